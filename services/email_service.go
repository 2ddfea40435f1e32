package services

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"teamup-api/config"
)

type EmailService struct {
	config *config.Config
	dialer *gomail.Dialer
}

func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)

	return &EmailService{
		config: cfg,
		dialer: dialer,
	}
}

// SendWelcomeEmail greets a newly registered user.
func (es *EmailService) SendWelcomeEmail(email, name string) error {
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Welcome to TeamUp</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { text-align: center; background: #16a34a; color: white; padding: 20px; border-radius: 10px 10px 0 0; }
        .content { background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px; }
        .footer { text-align: center; margin-top: 20px; color: #666; font-size: 14px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>⚽ TeamUp</h1>
            <p>Welcome aboard</p>
        </div>
        <div class="content">
            <h2>Hello %s!</h2>
            <p>Your TeamUp account is ready. Browse events near you, sign up, and show up — your reliability score thanks you.</p>
        </div>
        <div class="footer">
            <p>&copy; %d TeamUp. All rights reserved.</p>
        </div>
    </div>
</body>
</html>`, name, time.Now().Year())

	return es.send(email, "Welcome to TeamUp!", htmlBody)
}

// SendPromotionEmail tells a waitlisted user they were moved to a
// confirmed slot.
func (es *EmailService) SendPromotionEmail(email, name, eventTitle string, eventTime time.Time) error {
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>You're in!</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { text-align: center; background: #16a34a; color: white; padding: 20px; border-radius: 10px 10px 0 0; }
        .content { background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px; }
        .event { background: #e9ecef; padding: 20px; border-radius: 8px; margin: 20px 0; }
        .footer { text-align: center; margin-top: 20px; color: #666; font-size: 14px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>⚽ TeamUp</h1>
            <p>A spot opened up</p>
        </div>
        <div class="content">
            <h2>Hello %s!</h2>
            <p>Good news — you have been moved off the waiting list and now have a confirmed spot.</p>
            <div class="event">
                <strong>%s</strong><br>
                %s
            </div>
            <p>If you can no longer make it, please withdraw in time so the next person in line can take your place.</p>
        </div>
        <div class="footer">
            <p>&copy; %d TeamUp. All rights reserved.</p>
        </div>
    </div>
</body>
</html>`, name, eventTitle, eventTime.Format("Monday, 2 Jan 2006 at 15:04"), time.Now().Year())

	return es.send(email, "TeamUp - You got a confirmed spot!", htmlBody)
}

// SendEventCancelledEmail informs a participant that an event was called off.
func (es *EmailService) SendEventCancelledEmail(email, name, eventTitle string, eventTime time.Time) error {
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Event cancelled</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { text-align: center; background: #dc3545; color: white; padding: 20px; border-radius: 10px 10px 0 0; }
        .content { background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px; }
        .event { background: #e9ecef; padding: 20px; border-radius: 8px; margin: 20px 0; }
        .footer { text-align: center; margin-top: 20px; color: #666; font-size: 14px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>⚽ TeamUp</h1>
            <p>Event cancelled</p>
        </div>
        <div class="content">
            <h2>Hello %s,</h2>
            <p>Unfortunately the organizer cancelled this event:</p>
            <div class="event">
                <strong>%s</strong><br>
                %s
            </div>
            <p>This does not affect your reliability score.</p>
        </div>
        <div class="footer">
            <p>&copy; %d TeamUp. All rights reserved.</p>
        </div>
    </div>
</body>
</html>`, name, eventTitle, eventTime.Format("Monday, 2 Jan 2006 at 15:04"), time.Now().Year())

	return es.send(email, "TeamUp - Event cancelled", htmlBody)
}

// SendTicketResolvedEmail notifies a user that an admin closed their ticket.
func (es *EmailService) SendTicketResolvedEmail(email, name, ticketTitle string) error {
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Ticket resolved</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { text-align: center; background: #16a34a; color: white; padding: 20px; border-radius: 10px 10px 0 0; }
        .content { background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px; }
        .footer { text-align: center; margin-top: 20px; color: #666; font-size: 14px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>⚽ TeamUp</h1>
            <p>Support update</p>
        </div>
        <div class="content">
            <h2>Hello %s,</h2>
            <p>Your request "<strong>%s</strong>" has been resolved by our team.</p>
        </div>
        <div class="footer">
            <p>&copy; %d TeamUp. All rights reserved.</p>
        </div>
    </div>
</body>
</html>`, name, ticketTitle, time.Now().Year())

	return es.send(email, "TeamUp - Your ticket was resolved", htmlBody)
}

func (es *EmailService) send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", es.config.FromName, es.config.FromEmail))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := es.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
