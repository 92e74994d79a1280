package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"studytrack/internal/models"
)

// ReportService sends progress report emails via Amazon SES
type ReportService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewReportService creates a new report service.
// With no from-address configured it degrades to a disabled service that
// skips all sends instead of failing.
func NewReportService(awsRegion, fromEmail, fromName, appBaseURL string) (*ReportService, error) {
	if fromEmail == "" {
		log.Println("Report email service disabled: SES_FROM_EMAIL not configured")
		return &ReportService{enabled: false}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg)
	log.Printf("Report email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &ReportService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
	}, nil
}

// IsEnabled returns whether the report service is enabled
func (s *ReportService) IsEnabled() bool {
	return s.enabled
}

// SendWeeklyReport renders the last-7-days rollup into an email for the
// user. subjectOrder fixes the row order to the catalog's display order.
func (s *ReportService) SendWeeklyReport(ctx context.Context, user *models.User, rollup *RollupResult, subjectOrder []string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): weekly report to %s", user.Email)
		return nil
	}

	subject := "Your StudyTrack Weekly Report"
	htmlBody := s.renderHTMLReport(user.Name, rollup, subjectOrder)
	textBody := s.renderTextReport(user.Name, rollup, subjectOrder)

	return s.sendEmail(ctx, user.Email, subject, htmlBody, textBody)
}

func (s *ReportService) renderHTMLReport(name string, rollup *RollupResult, subjectOrder []string) string {
	var rows strings.Builder
	for _, subjectName := range subjectOrder {
		counts, ok := rollup.Subjects[subjectName]
		if !ok {
			continue
		}
		fmt.Fprintf(&rows,
			"<tr><td>%s</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td></tr>\n",
			subjectName, counts.Correct, counts.Wrong, counts.Empty, counts.Total)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4f46e5; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		table { width: 100%%; border-collapse: collapse; }
		th, td { text-align: left; padding: 8px; border-bottom: 1px solid #ddd; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Weekly Progress Report</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>Here is what you logged over the last 7 days:</p>
			<table>
				<tr><th>Subject</th><th>Correct</th><th>Wrong</th><th>Blank</th><th>Total</th></tr>
				%s
			</table>
			<p><strong>Total questions: %d &mdash; accuracy %.0f%%</strong></p>
			<p><a href="%s">Open StudyTrack</a> to keep your streak going.</p>
		</div>
		<div class="footer">
			<p>This is an automated email from StudyTrack. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, name, rows.String(), rollup.Overall.Total, 100*rollup.Overall.Accuracy, s.appBaseURL)
}

func (s *ReportService) renderTextReport(name string, rollup *RollupResult, subjectOrder []string) string {
	var lines strings.Builder
	for _, subjectName := range subjectOrder {
		counts, ok := rollup.Subjects[subjectName]
		if !ok {
			continue
		}
		fmt.Fprintf(&lines, "  %s: %d correct, %d wrong, %d blank (%d total)\n",
			subjectName, counts.Correct, counts.Wrong, counts.Empty, counts.Total)
	}

	return fmt.Sprintf(`Hi %s,

Here is what you logged over the last 7 days:

%s
Total questions: %d, accuracy %.0f%%.

Open %s to keep your streak going.

---
This is an automated email from StudyTrack. Please do not reply.
`, name, lines.String(), rollup.Overall.Total, 100*rollup.Overall.Accuracy, s.appBaseURL)
}

func (s *ReportService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
