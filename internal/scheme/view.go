package scheme

import (
	"bytes"
	"html/template"
)

var editorTemplate = template.Must(template.New("scheme").Parse(`<div class="scheme-editor">
<div class="screen-controls">
<button type="button" id="screen-top" class="screen-btn{{if .TopCurrent}} active{{end}}">top</button>
<button type="button" id="screen-bottom" class="screen-btn{{if .BottomCurrent}} active{{end}}">bottom</button>
</div>
<div class="scheme-wrapper">
<div id="screen-indicator" class="screen-indicator" data-position="{{.Screen}}" style="order: {{.IndicatorOrder}}">screen</div>
<div id="cols-controls">{{range .ColLabels}}<div class="col-number">{{.}}</div>{{end}}</div>
<div class="scheme-body">
<div id="rows-controls">{{range .RowLabels}}<div class="row-number">{{.}}</div>{{end}}</div>
<div id="scheme-grid" data-rows="{{.Rows}}" data-cols="{{.Cols}}">{{range .Seats}}<div class="seat{{if .Active}} active{{end}}" data-row="{{.Row}}" data-col="{{.Col}}"></div>{{end}}</div>
</div>
</div>
</div>
`))

// HTMLView renders the editor as admin-page markup. The output keeps the
// element ids and classes the admin stylesheet targets.
type HTMLView struct {
	buf bytes.Buffer
	err error
}

// NewHTMLView returns an empty view.
func NewHTMLView() *HTMLView { return &HTMLView{} }

// Render replaces the previous markup with a rendering of l.
func (v *HTMLView) Render(l Layout) {
	v.buf.Reset()
	v.err = editorTemplate.Execute(&v.buf, l)
}

// HTML returns the last rendered markup.
func (v *HTMLView) HTML() (string, error) {
	if v.err != nil {
		return "", v.err
	}
	return v.buf.String(), nil
}
