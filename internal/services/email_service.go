package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// EmailSender defines the interface for sending emails
type EmailSender interface {
	SendWelcomeEmail(ctx context.Context, email, name string) error
	SendSubscriptionConfirmation(ctx context.Context, email, firstName string) error
	SendCampaignEmail(ctx context.Context, email, subject, body string) error
}

// AWSSESEmailService sends emails using AWS SES
type AWSSESEmailService struct {
	sesClient   *ses.Client
	fromAddress string
	logger      *slog.Logger
}

// NewAWSSESEmailService creates a new AWS SES email service
func NewAWSSESEmailService(region, fromAddress string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		logger:      logger,
	}, nil
}

// SendWelcomeEmail greets a newly registered member.
func (s *AWSSESEmailService) SendWelcomeEmail(ctx context.Context, email, name string) error {
	subject := "Welcome to GymVerse"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour GymVerse account is ready. Browse programs, find a trainer, and start training.\n\nSee you in the gym,\nThe GymVerse Team\n",
		name,
	)

	return s.send(ctx, email, subject, body)
}

// SendSubscriptionConfirmation confirms a newsletter subscription.
func (s *AWSSESEmailService) SendSubscriptionConfirmation(ctx context.Context, email, firstName string) error {
	greeting := firstName
	if greeting == "" {
		greeting = "there"
	}
	subject := "You're on the GymVerse newsletter"
	body := fmt.Sprintf(
		"Hi %s,\n\nYou're subscribed to the GymVerse newsletter. Expect training tips, program launches, and member stories.\n\nThe GymVerse Team\n",
		greeting,
	)

	return s.send(ctx, email, subject, body)
}

// SendCampaignEmail delivers one newsletter campaign message.
func (s *AWSSESEmailService) SendCampaignEmail(ctx context.Context, email, subject, body string) error {
	return s.send(ctx, email, subject, body)
}

func (s *AWSSESEmailService) send(ctx context.Context, to, subject, body string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(body),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := s.sesClient.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Debug("email sent", slog.String("subject", subject))
	return nil
}
