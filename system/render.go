package system

import (
	"strings"
	"text/template"
)

// Rendered is the two bodies of a contact email.
type Rendered struct {
	Text string
	HTML string
}

// Fields are interpolated verbatim in both bodies (text/template does no
// escaping); the only transformation is newline to <br> in the HTML message.
var (
	textBody = template.Must(template.New("text").Parse(`
Nouveau message de contact depuis le portfolio:

Nom: {{.Sub.Name}}
Email: {{.Sub.Email}}
Sujet: {{.Sub.Subject}}

Message:
{{.Sub.Message}}

---
{{.Signature}}
`))

	htmlBody = template.Must(template.New("html").Funcs(template.FuncMap{
		"br": func(s string) string { return strings.ReplaceAll(s, "\n", "<br>") },
	}).Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
    <h2 style="color: #333; border-bottom: 2px solid #43e97b; padding-bottom: 10px;">
        Nouveau message de contact
    </h2>

    <div style="background: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0;">
        <p><strong>Nom:</strong> {{.Sub.Name}}</p>
        <p><strong>Email:</strong> <a href="mailto:{{.Sub.Email}}">{{.Sub.Email}}</a></p>
        <p><strong>Sujet:</strong> {{.Sub.Subject}}</p>
    </div>

    <div style="background: white; padding: 20px; border-left: 4px solid #43e97b; margin: 20px 0;">
        <h3 style="color: #333; margin-top: 0;">Message:</h3>
        <p style="line-height: 1.6; color: #555;">{{br .Sub.Message}}</p>
    </div>

    <footer style="text-align: center; margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; color: #777;">
        <p>{{.Signature}}</p>
    </footer>
</div>
`))
)

// Render produces the plain text and HTML bodies for sub. It does no I/O.
func Render(sub Submission, signature string) Rendered {
	data := struct {
		Sub       Submission
		Signature string
	}{sub, signature}

	var text, html strings.Builder
	// executing into a strings.Builder with string fields cannot fail
	_ = textBody.Execute(&text, data)
	_ = htmlBody.Execute(&html, data)
	return Rendered{Text: text.String(), HTML: html.String()}
}
