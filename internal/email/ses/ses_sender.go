package ses

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"clinex/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendRunCompleted(ctx context.Context, toEmail string, summary port.RunSummary) error {
	subject := fmt.Sprintf("Extraction batch finished: %s (%d/%d cases ok)",
		summary.Task, summary.CasesTotal-summary.CasesFailed, summary.CasesTotal)
	htmlBody := buildRunCompletedHTML(summary)
	textBody := buildRunCompletedText(summary)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildRunCompletedText(summary port.RunSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n", summary.Task)
	fmt.Fprintf(&b, "Models: %s\n", strings.Join(summary.Providers, ", "))
	fmt.Fprintf(&b, "Cases: %d total, %d failed\n", summary.CasesTotal, summary.CasesFailed)
	fmt.Fprintf(&b, "Elapsed: %s\n\nOutput files:\n", summary.Elapsed)
	for _, f := range summary.OutputFiles {
		fmt.Fprintf(&b, "  %s\n", f)
	}
	b.WriteString("\nCLINEX")
	return b.String()
}

func buildRunCompletedHTML(summary port.RunSummary) string {
	var files strings.Builder
	for _, f := range summary.OutputFiles {
		fmt.Fprintf(&files, "<li style=\"color: #666;\">%s</li>", f)
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Extraction batch finished</h2>
  <p>Task <strong>%s</strong> completed on models: %s.</p>
  <p>%d cases processed, %d failed. Elapsed: %s.</p>
  <p>Output workbooks:</p>
  <ul>%s</ul>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">CLINEX - Clinical Finding Extraction</p>
</body>
</html>`,
		summary.Task, strings.Join(summary.Providers, ", "),
		summary.CasesTotal, summary.CasesFailed, summary.Elapsed,
		files.String())
}
