package handler

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/russross/blackfriday"

	"github.com/dskvich/amethyst-telegram-bot/pkg/domain"
	"github.com/dskvich/amethyst-telegram-bot/pkg/logger"
)

type StatusReader interface {
	Read(ctx context.Context) (domain.BotStatus, error)
}

var statusPageTemplate = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
<head>
<title>{{.Bot.Name}} AI Bot</title>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, Arial, sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; color: #333; }
h1, h3 { color: #6a1b9a; }
.container { border: 1px solid #e0e0e0; border-radius: 8px; padding: 20px; margin: 20px 0; }
.status { padding: 4px 8px; border-radius: 4px; font-weight: bold; }
.status-enabled { background-color: #e8f5e9; color: #2e7d32; }
.status-disabled { background-color: #ffebee; color: #c62828; }
.button { padding: 8px 16px; margin: 5px; background-color: #6a1b9a; color: white; border: none; border-radius: 4px; cursor: pointer; }
</style>
</head>
<body>
<h1>{{.Bot.Name}} AI Bot</h1>
<div class="container">
<p>{{.Short}}</p>
<details><summary>Full description</summary>{{.Full}}</details>
<p>Website: <a href="{{.Bot.Website}}" target="_blank">{{.Bot.Website}}</a></p>
<p>Support: {{.Bot.SupportChat}}</p>
</div>
<div class="container">
<h3>Bot status</h3>
{{if .Status.Enabled}}<p>Current status: <span class="status status-enabled">Active</span></p>
{{else}}<p>Current status: <span class="status status-disabled">Disabled</span></p>
{{end}}<p>Last restart: {{.Status.LastRestart.Format "2006-01-02 15:04:05 MST"}}</p>
<p>Last update: {{with .Status.LastUpdate}}{{.Format "2006-01-02 15:04:05 MST"}}{{else}}no data{{end}}</p>
</div>
<div class="container">
<h3>Control panel</h3>
<input type="password" id="admin-password" placeholder="Password"><br>
<button class="button" onclick="controlBot('enable')">Enable</button>
<button class="button" onclick="controlBot('disable')">Disable</button>
<button class="button" onclick="controlBot('restart')">Restart</button>
<p id="admin-message"></p>
</div>
<script>
function controlBot(action) {
  const password = document.getElementById('admin-password').value;
  const message = document.getElementById('admin-message');
  if (!password) { message.textContent = 'Enter the password'; return; }
  fetch('/?action=' + action, {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({password}),
  })
    .then(r => r.json())
    .then(data => {
      if (data.success) { message.textContent = 'Done'; setTimeout(() => location.reload(), 1000); }
      else { message.textContent = data.error || 'Request failed'; }
    })
    .catch(() => { message.textContent = 'Request failed'; });
}
</script>
</body>
</html>
`))

type statusPageData struct {
	Bot    domain.BotInfo
	Short  string
	Full   template.HTML
	Status domain.BotStatus
}

type statusPage struct {
	store StatusReader
	bot   domain.BotInfo
	full  template.HTML
}

func NewStatusPage(store StatusReader, bot domain.BotInfo) *statusPage {
	return &statusPage{
		store: store,
		bot:   bot,
		full:  template.HTML(blackfriday.MarkdownCommon([]byte(bot.FullDescription()))),
	}
}

func (p *statusPage) Show(w http.ResponseWriter, r *http.Request) {
	status, err := p.store.Read(r.Context())
	if err != nil {
		slog.WarnContext(r.Context(), "Reading bot status for status page", logger.Err(err))
		status = domain.DefaultBotStatus(time.Now())
	}

	var buf bytes.Buffer
	if err := statusPageTemplate.Execute(&buf, statusPageData{
		Bot:    p.bot,
		Short:  p.bot.ShortDescription(),
		Full:   p.full,
		Status: status,
	}); err != nil {
		slog.ErrorContext(r.Context(), "Rendering status page", logger.Err(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
