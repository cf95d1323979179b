package viz

import (
	"bytes"
	"fmt"
	"html/template"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))
}

// DefaultScriptURL is where the page loads Cytoscape.js from.
const DefaultScriptURL = "https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Title     string
	ScriptURL string
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{
		Title:     "Whitespace graph",
		ScriptURL: DefaultScriptURL,
	}
}

// templateData holds data for the HTML template.
type templateData struct {
	Title     string
	ScriptURL string
	GraphJSON template.JS
	Mode      string
	Width     float64
	Height    float64
}

// GenerateHTML writes a page that draws the frame exactly as reduced, with
// positions preset and no client-side layout.
func GenerateHTML(graph *GraphData, opts HTMLOptions) (string, error) {
	if graph == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}
	if opts.ScriptURL == "" {
		opts.ScriptURL = DefaultScriptURL
	}
	if opts.Title == "" {
		opts.Title = DefaultOptions().Title
	}

	graphJSON, err := graph.ToCytoscapeJSON()
	if err != nil {
		return "", err
	}

	data := templateData{
		Title:     opts.Title,
		ScriptURL: opts.ScriptURL,
		GraphJSON: template.JS(graphJSON),
		Mode:      graph.Mode,
		Width:     graph.Width,
		Height:    graph.Height,
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="{{.ScriptURL}}"></script>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      background: #f5f5f5;
    }
    #cy {
      position: relative;
      background: white;
    }
    #mode {
      position: absolute;
      top: 8px;
      left: 8px;
      font-size: 11px;
      color: #6b7280;
      z-index: 10;
    }
    .empty-state {
      padding: 2em;
      color: #666;
    }
    #tooltip {
      position: absolute;
      display: none;
      background: white;
      border: 1px solid #ccc;
      border-radius: 4px;
      padding: 8px 12px;
      box-shadow: 0 2px 8px rgba(0,0,0,0.15);
      max-width: 320px;
      font-size: 13px;
      z-index: 1000;
      pointer-events: none;
    }
    #tooltip .tt-title { font-weight: bold; margin-bottom: 4px; }
    #tooltip .tt-assignee, #tooltip .tt-signals { color: #555; margin: 2px 0; }
  </style>
</head>
<body>
  <div id="cy" style="width: {{.Width}}px; height: {{.Height}}px;">
    <div id="mode">{{.Mode}}</div>
  </div>
  <div id="tooltip"></div>
  <script>
    (function() {
      const graphData = {{.GraphJSON}};
      if (graphData.nodes.length === 0) {
        document.getElementById('cy').insertAdjacentHTML('beforeend',
          '<div class="empty-state">No nodes to display.</div>');
        return;
      }

      const cy = cytoscape({
        container: document.getElementById('cy'),
        elements: graphData,
        userZoomingEnabled: true,
        style: [
          {
            selector: 'node',
            style: {
              'background-color': 'data(color)',
              'width': 'data(size)',
              'height': 'data(size)',
              'opacity': 'data(opacity)',
              'border-width': 'data(borderWidth)',
              'border-color': 'data(borderColor)',
              'z-index': 'data(z)',
              'label': 'data(label)',
              'font-size': '10px',
              'color': '#111827',
              'text-valign': 'top',
              'text-margin-y': '-4px'
            }
          },
          {
            selector: 'edge',
            style: {
              'line-color': 'data(color)',
              'width': 'data(width)',
              'opacity': 'data(opacity)',
              'curve-style': 'straight'
            }
          }
        ],
        layout: { name: 'preset', fit: false }
      });

      const tooltip = document.getElementById('tooltip');

      function escapeHtml(str) {
        if (!str) return '';
        return String(str).replace(/&/g, '&amp;')
                          .replace(/</g, '&lt;')
                          .replace(/>/g, '&gt;')
                          .replace(/"/g, '&quot;')
                          .replace(/'/g, '&#39;');
      }

      cy.on('mouseover', 'node', function(evt) {
        const d = evt.target.data();
        let html = '<div class="tt-title">' + escapeHtml(d.title || d.id) + '</div>';
        if (d.assignee) html += '<div class="tt-assignee">' + escapeHtml(d.assignee) + '</div>';
        if (d.signals && d.signals.length > 0) {
          html += '<div class="tt-signals">' + d.signals.map(escapeHtml).join(', ') + '</div>';
        }
        tooltip.innerHTML = html;
        tooltip.style.display = 'block';
        const pos = evt.target.renderedPosition();
        tooltip.style.left = (pos.x + 15) + 'px';
        tooltip.style.top = (pos.y + 15) + 'px';
      });

      cy.on('mouseout', 'node', function() {
        tooltip.style.display = 'none';
      });

      cy.on('tap', 'node', function(evt) {
        window.open(evt.target.data('url'), '_blank');
      });
    })();
  </script>
</body>
</html>`
