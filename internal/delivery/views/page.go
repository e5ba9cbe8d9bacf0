// Package views renders the public landing page.
package views

import (
	"context"
	"io"

	"github.com/Vovarama1992/qrpage/internal/ports"
	"github.com/a-h/templ"
)

const pageStyle = `body{margin:0;font-family:system-ui,-apple-system,sans-serif;background:#f1f5f9;color:#0f172a}
main{max-width:640px;margin:0 auto;padding:32px 16px}
h1{color:#1e3a8a;text-align:center}
.card{background:#fff;border-radius:16px;padding:20px;margin:16px 0;box-shadow:0 2px 8px rgba(15,23,42,.08)}
.card img{width:100%;border-radius:12px}
.card audio{width:100%}
.text{white-space:pre-wrap;line-height:1.5}
.empty{text-align:center;color:#64748b}`

// reloadScript reloads the page when the bot edits it.
const reloadScript = `(function(){var el=document.getElementById("qrpage");if(!el||!window.WebSocket)return;
var p=location.protocol==="https:"?"wss://":"ws://";
var ws=new WebSocket(p+location.host+"/ws?room="+encodeURIComponent(el.dataset.page));
ws.onmessage=function(){location.reload()};})();`

// Page is the full landing document.
func Page(v ports.PageView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`+
			templ.EscapeString(v.Title)+`</title><style>`+pageStyle+`</style></head><body>`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<main id="qrpage" data-page="`+templ.EscapeString(v.PageID)+`"><h1>`+
			templ.EscapeString(v.Title)+`</h1>`); err != nil {
			return err
		}

		var body templ.Component = EmptyState()
		if v.HasContent {
			body = Content(v)
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}

		_, err := io.WriteString(w, `</main><script>`+reloadScript+`</script></body></html>`)
		return err
	})
}

// Content renders whichever of image, audio and text are set.
func Content(v ports.PageView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if v.ImageURL != "" {
			if _, err := io.WriteString(w, `<div class="card"><img src="`+
				templ.EscapeString(string(templ.URL(v.ImageURL)))+`" alt="`+templ.EscapeString(v.Title)+`"></div>`); err != nil {
				return err
			}
		}
		if v.AudioURL != "" {
			if _, err := io.WriteString(w, `<div class="card"><audio controls preload="metadata" src="`+
				templ.EscapeString(string(templ.URL(v.AudioURL)))+`"></audio></div>`); err != nil {
				return err
			}
		}
		if v.Text != "" {
			if _, err := io.WriteString(w, `<div class="card text">`+templ.EscapeString(v.Text)+`</div>`); err != nil {
				return err
			}
		}
		return nil
	})
}

func EmptyState() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="card empty"><p>This page has no content yet.</p></div>`)
		return err
	})
}

func Unavailable() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>Unavailable</title></head>`+
			`<body><p>The page is temporarily unavailable. Please try again later.</p></body></html>`)
		return err
	})
}
