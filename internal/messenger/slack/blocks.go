package slack

import (
	"fmt"

	slacklib "github.com/slack-go/slack"
)

// BuildNotificationBlocks builds Block Kit blocks for an assignment alert:
// a header line with the title and a section with the body.
func BuildNotificationBlocks(title, text string) []slacklib.Block {
	header := slacklib.NewSectionBlock(
		slacklib.NewTextBlockObject(slacklib.MarkdownType, fmt.Sprintf("*%s*", title), false, false),
		nil,
		nil,
	)
	if text == "" {
		return []slacklib.Block{header}
	}

	body := slacklib.NewContextBlock("",
		slacklib.NewTextBlockObject(slacklib.MarkdownType, text, false, false),
	)

	return []slacklib.Block{header, body}
}
