package server

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/send2-name/delegate2name-api/frame"
)

// framePage is a vNext frame: everything a client needs is in the meta tags.
var framePage = template.Must(template.New("frame").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta property="og:title" content="{{.Title}}">
<meta property="og:description" content="{{.Description}}">
<meta property="og:image" content="{{.ImageURL}}">
<meta property="fc:frame" content="vNext">
<meta property="fc:frame:image" content="{{.ImageURL}}">
<meta property="fc:frame:image:aspect_ratio" content="1.91:1">
{{- if .PostURL}}
<meta property="fc:frame:post_url" content="{{.PostURL}}">
{{- end}}
{{- if .InputPlaceholder}}
<meta property="fc:frame:input:text" content="{{.InputPlaceholder}}">
{{- end}}
{{- range .Buttons}}
<meta property="fc:frame:button:{{.Index}}" content="{{.Label}}">
<meta property="fc:frame:button:{{.Index}}:action" content="{{.Action}}">
<meta property="fc:frame:button:{{.Index}}:target" content="{{.Target}}">
{{- if .PostURL}}
<meta property="fc:frame:button:{{.Index}}:post_url" content="{{.PostURL}}">
{{- end}}
{{- end}}
</head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Description}}</p>
<img src="{{.ImageURL}}" alt="{{.Title}}">
</body>
</html>
`))

type pageButton struct {
	Index   int
	Label   string
	Action  string
	Target  string
	PostURL string
}

type page struct {
	Title            string
	Description      string
	ImageURL         string
	PostURL          string
	InputPlaceholder string
	Buttons          []pageButton
}

func pageOf(step frame.Step) page {
	p := page{
		Title:            step.Title,
		Description:      step.Description,
		ImageURL:         step.ImageURL,
		InputPlaceholder: step.InputPlaceholder,
	}
	for i, b := range step.Buttons {
		p.Buttons = append(p.Buttons, pageButton{
			Index:   i + 1,
			Label:   b.Label,
			Action:  string(b.Action),
			Target:  b.Target,
			PostURL: b.PostURL,
		})
		// clients without per button targets post to the first post target
		if p.PostURL == "" && b.Action == frame.ActionPost {
			p.PostURL = b.Target
		}
	}
	return p
}

// RenderStep writes step as a frame page.
func RenderStep(w http.ResponseWriter, step frame.Step) error {
	var buf bytes.Buffer
	if err := framePage.Execute(&buf, pageOf(step)); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(buf.Bytes())
	return err
}
