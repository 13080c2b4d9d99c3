// Package printview renders a print-ready HTML page for a finished note.
package printview

import (
	"html/template"
	"io"
)

var pageTemplate = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html>
  <head>
    <title>Catatan Medis S.O.A.P.</title>
    <style>
      body { font-family: Arial, sans-serif; padding: 20px; line-height: 1.6; }
      h1 { color: #2563eb; border-bottom: 2px solid #2563eb; padding-bottom: 10px; }
      .content { white-space: pre-wrap; }
      @media print { body { margin: 0; } }
    </style>
  </head>
  <body>
    <h1>Catatan Medis S.O.A.P.</h1>
    <div class="content">{{.}}</div>
  </body>
</html>
`))

// Render writes the print page for the given note text. The note is inserted
// as escaped text inside a pre-wrap container, so line breaks survive.
func Render(w io.Writer, soapContent string) error {
	return pageTemplate.Execute(w, soapContent)
}
