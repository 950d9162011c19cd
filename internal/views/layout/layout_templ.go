// Code generated by templ - DO NOT EDIT.

// templ: version: v0.2.793
package layout

//lint:file-ignore SA4006 This context is only used if a nested component is present.

import "github.com/a-h/templ"
import templruntime "github.com/a-h/templ/runtime"

// Layout wraps content in the HTML document shell shared by every page.
func Layout(title string, content templ.Component) templ.Component {
	return templruntime.GeneratedTemplate(func(templ_7745c5c3_Input templruntime.GeneratedComponentInput) (templ_7745c5c3_Err error) {
		templ_7745c5c3_W, ctx := templ_7745c5c3_Input.Writer, templ_7745c5c3_Input.Context
		if templ_7745c5c3_CtxErr := ctx.Err(); templ_7745c5c3_CtxErr != nil {
			return templ_7745c5c3_CtxErr
		}
		templ_7745c5c3_Buffer, templ_7745c5c3_IsBuffer := templruntime.GetBuffer(templ_7745c5c3_W)
		if !templ_7745c5c3_IsBuffer {
			defer func() {
				templ_7745c5c3_BufErr := templruntime.ReleaseBuffer(templ_7745c5c3_Buffer)
				if templ_7745c5c3_Err == nil {
					templ_7745c5c3_Err = templ_7745c5c3_BufErr
				}
			}()
		}
		ctx = templ.InitializeContext(ctx)
		templ_7745c5c3_Var1 := templ.GetChildren(ctx)
		if templ_7745c5c3_Var1 == nil {
			templ_7745c5c3_Var1 = templ.NopComponent
		}
		ctx = templ.ClearChildren(ctx)
		_, templ_7745c5c3_Err = templ_7745c5c3_Buffer.WriteString("<!doctype html><html lang=\"en\"><head><meta charset=\"utf-8\"><meta name=\"viewport\" content=\"width=device-width, initial-scale=1\"><title>")
		if templ_7745c5c3_Err != nil {
			return templ_7745c5c3_Err
		}
		var templ_7745c5c3_Var2 string
		templ_7745c5c3_Var2, templ_7745c5c3_Err = templ.JoinStringErrs(title)
		if templ_7745c5c3_Err != nil {
			return templ.Error{Err: templ_7745c5c3_Err, FileName: `internal/views/layout/layout.templ`, Line: 10, Col: 17}
		}
		_, templ_7745c5c3_Err = templ_7745c5c3_Buffer.WriteString(templ.EscapeString(templ_7745c5c3_Var2))
		if templ_7745c5c3_Err != nil {
			return templ_7745c5c3_Err
		}
		_, templ_7745c5c3_Err = templ_7745c5c3_Buffer.WriteString("</title><script src=\"https://unpkg.com/htmx.org@2.0.4\" defer></script><style>\n\t\t\t\tbody{font-family:system-ui,sans-serif;margin:0;background:#faf7f2;color:#2b2118}\n\t\t\t\theader{display:flex;justify-content:space-between;align-items:center;padding:1rem 2rem;background:#7a2e12;color:#fff}\n\t\t\t\theader a{color:#fff}\n\t\t\t\tmain{padding:1.5rem 2rem}\n\t\t\t\tnav.tabs a{margin-right:.75rem;padding:.25rem .75rem;border-radius:999px;text-decoration:none;color:#7a2e12}\n\t\t\t\tnav.tabs a[data-state=\"active\"]{background:#7a2e12;color:#fff}\n\t\t\t\ttable{width:100%;border-collapse:collapse;margin-top:1rem}\n\t\t\t\tth,td{text-align:left;padding:.5rem;border-bottom:1px solid #e4dccf}\n\t\t\t\t.status-expired{background:#fde2e1}\n\t\t\t\t.status-expires_today{background:#fdebd3}\n\t\t\t\t.status-critical{background:#fff5cc}\n\t\t\t\t.status-safe{background:#e8f5e9}\n\t\t\t\t.status-long_shelf_life{background:#e3f2fd}\n\t\t\t\t.status-unknown{background:#f1f1f1}\n\t\t\t\t.badge{display:inline-block;padding:.1rem .5rem;border-radius:.5rem;font-size:.85rem}\n\t\t\t\t.cards{display:flex;gap:1rem;flex-wrap:wrap}\n\t\t\t\t.card{padding:.75rem 1rem;border-radius:.5rem;background:#fff;min-width:8rem}\n\t\t\t\t.error{color:#a11}\n\t\t\t</style></head><body hx-boost=\"true\">")
		if templ_7745c5c3_Err != nil {
			return templ_7745c5c3_Err
		}
		if content != nil {
			templ_7745c5c3_Err = content.Render(ctx, templ_7745c5c3_Buffer)
			if templ_7745c5c3_Err != nil {
				return templ_7745c5c3_Err
			}
		}
		_, templ_7745c5c3_Err = templ_7745c5c3_Buffer.WriteString("</body></html>")
		if templ_7745c5c3_Err != nil {
			return templ_7745c5c3_Err
		}
		return templ_7745c5c3_Err
	})
}

var _ = templruntime.GeneratedTemplate
