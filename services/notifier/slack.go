package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"sjsage522/promowatch/internal/promo"
	"sjsage522/promowatch/pkg/errors"
)

// SlackNotifier posts change results to a Slack incoming webhook
type SlackNotifier struct {
	webhookURL string
}

// NewSlackNotifier creates a new Slack notifier
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{webhookURL: webhookURL}
}

// Notify posts one target's material changes as a webhook message with one
// attachment per change category
func (n *SlackNotifier) Notify(ctx context.Context, target string, result promo.ChangeResult) error {
	msg := &slack.WebhookMessage{
		Text:        fmt.Sprintf("*%s*: %s", target, result.Summary),
		Attachments: buildAttachments(result),
	}

	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return errors.NewNotification(target, "failed to post webhook", err)
	}
	return nil
}

func buildAttachments(result promo.ChangeResult) []slack.Attachment {
	var attachments []slack.Attachment
	if len(result.Added) > 0 {
		attachments = append(attachments, slack.Attachment{
			Color: "good",
			Title: "New promotions",
			Text:  formatPromotions(result.Added),
		})
	}
	if len(result.Removed) > 0 {
		attachments = append(attachments, slack.Attachment{
			Color: "danger",
			Title: "Removed promotions",
			Text:  formatPromotions(result.Removed),
		})
	}
	if len(result.Changed) > 0 {
		attachments = append(attachments, slack.Attachment{
			Color: "warning",
			Title: "Updated promotions",
			Text:  formatPairs(result.Changed),
		})
	}
	return attachments
}

func formatPromotions(promotions []promo.Promotion) string {
	lines := make([]string, 0, len(promotions))
	for _, p := range promotions {
		lines = append(lines, "- "+describePromotion(p))
	}
	return strings.Join(lines, "\n")
}

func formatPairs(pairs []promo.ChangePair) string {
	lines := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		lines = append(lines, fmt.Sprintf("- %s\n    was: %s\n    now: %s",
			pair.Current.Title,
			describeDetails(pair.Previous),
			describeDetails(pair.Current)))
	}
	return strings.Join(lines, "\n")
}

func describePromotion(p promo.Promotion) string {
	details := describeDetails(p)
	if details == "" {
		return p.Title
	}
	return fmt.Sprintf("%s (%s)", p.Title, details)
}

func describeDetails(p promo.Promotion) string {
	var details []string
	for _, field := range []string{p.Perk, p.Dates, p.Price} {
		if field != "" {
			details = append(details, field)
		}
	}
	return strings.Join(details, "; ")
}
