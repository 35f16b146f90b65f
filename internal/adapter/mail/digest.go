package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

var digestTmpl = template.Must(template.New("digest").Funcs(template.FuncMap{
	"join": func(ws []string) string { return strings.Join(ws, ", ") },
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
<h1>Weekly word adventures</h1>
<p>Here is what happened since {{.Since}}.</p>
{{range .Students}}
<h2>{{.Name}}</h2>
<ul>
  <li>Words looked up: {{.Searches}}</li>
  <li>Quizzes taken: {{.Quizzes}} ({{.Accuracy}}% correct)</li>
  <li>Words mastered: {{.WordsMastered}}</li>
</ul>
{{if .RecentWords}}<p>Recent words: {{join .RecentWords}}</p>{{end}}
{{end}}
<p><a href="{{.PortalURL}}">Open the parent portal</a></p>
</body>
</html>`))

// DigestMessage renders d into a Message. portalURL is linked at the bottom.
func DigestMessage(d domain.ParentDigest, portalURL string) (Message, error) {
	data := struct {
		Since     string
		Students  []domain.StudentDigest
		PortalURL string
	}{
		Since:     d.Since.Format("Monday, January 2"),
		Students:  d.Students,
		PortalURL: portalURL,
	}

	var html bytes.Buffer
	if err := digestTmpl.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render digest: %w", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Weekly word adventures since %s\n\n", data.Since)
	for _, s := range d.Students {
		fmt.Fprintf(&text, "%s: %d words looked up, %d quizzes (%d%% correct), %d words mastered\n",
			s.Name, s.Searches, s.Quizzes, s.Accuracy, s.WordsMastered)
	}
	fmt.Fprintf(&text, "\nParent portal: %s\n", portalURL)

	return Message{
		To:      d.To,
		Subject: "Your child's weekly dictionary progress",
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

// SendDigest renders d and delivers it, linking to the configured portal.
func (s *Sender) SendDigest(ctx context.Context, d domain.ParentDigest) error {
	msg, err := DigestMessage(d, s.appBaseURL+"/parents")
	if err != nil {
		return err
	}
	return s.Send(ctx, msg)
}
