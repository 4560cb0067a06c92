package conversation

import (
	"bufio"
	"regexp"
	"strings"
	"time"

	"voicecast-server-go/internal/platform/errors"
)

// WhatsApp chat export line shapes. The bracket style comes from iOS exports,
// the dash style from Android.
var (
	bracketPattern = regexp.MustCompile(`^\[(\d{1,2}/\d{1,2}/\d{2,4}),?\s*(\d{1,2}:\d{2}(?::\d{2})?(?:\s*[AP]M)?)\]\s*(.+?):\s*(.*)$`)
	dashPattern    = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4}),?\s*(\d{1,2}:\d{2}(?::\d{2})?(?:\s*[AP]M)?)\s*-\s*(.+?):\s*(.*)$`)

	mediaMarkers = []string{"<attached:", "<media omitted>", "image omitted", "video omitted", "audio omitted"}
)

var dateLayouts = []string{
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/06 15:04:05",
	"1/2/06 15:04",
	"1/2/2006 3:04 PM",
	"1/2/06 3:04 PM",
}

// ParseWhatsAppExport parses a raw WhatsApp chat export. Lines that match no
// known shape are treated as continuations of the previous message. Returns
// an error only when nothing parseable is found.
func ParseWhatsAppExport(content string) ([]Message, error) {
	var messages []Message

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		msg, ok := parseLine(line)
		if !ok {
			// continuation of a multi-line message
			if len(messages) > 0 {
				messages[len(messages)-1].Content += "\n" + line
			}
			continue
		}
		messages = append(messages, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.KindConfig, "conversation.parse", "failed to scan export", err)
	}

	if len(messages) == 0 {
		return nil, errors.New(errors.KindConfig, "conversation.parse", "no parseable messages in export")
	}
	return messages, nil
}

func parseLine(line string) (Message, bool) {
	for _, pattern := range []*regexp.Regexp{bracketPattern, dashPattern} {
		m := pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		content := m[4]
		return Message{
			Sender:    strings.TrimSpace(m[3]),
			Content:   content,
			Timestamp: parseTimestamp(m[1], m[2]),
			IsMedia:   isMediaContent(content),
		}, true
	}
	return Message{}, false
}

func parseTimestamp(date, clock string) time.Time {
	raw := date + " " + strings.TrimSpace(clock)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func isMediaContent(content string) bool {
	lowered := strings.ToLower(content)
	for _, marker := range mediaMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
