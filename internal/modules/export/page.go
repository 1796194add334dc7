package export

import (
	"html/template"
	"strings"
)

var exportPageTpl = `<!DOCTYPE html>
<html lang="zh-Hant">
<head>
<meta charset="utf-8">
<title>Emogo 心情紀錄</title>
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 24px; }
  .wrap { max-width: 1080px; margin: 0 auto; background: #fff; border-radius: 8px; padding: 24px; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
  h1 { margin-top: 0; color: #333; }
  .meta { color: #666; margin-bottom: 16px; }
  .meta a { color: #1a73e8; text-decoration: none; }
  table { border-collapse: collapse; width: 100%; }
  th, td { border: 1px solid #ddd; padding: 8px 10px; text-align: left; font-size: 14px; }
  th { background: #fafafa; }
  tr:nth-child(even) { background: #fcfcfc; }
  .placeholder { color: #999; }
  footer { margin-top: 16px; color: #999; font-size: 12px; }
</style>
</head>
<body>
<div class="wrap">
  <h1>Emogo 心情紀錄</h1>
  <div class="meta">共 {{len .Rows}} 筆紀錄 · <a href="/export/csv">下載 CSV</a></div>
  <table>
    <thead>
      <tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
    </thead>
    <tbody>
    {{- range .Rows}}
      <tr>
        <td>{{.ID}}</td>
        <td>{{.MoodLabel}}</td>
        <td>{{.MoodScore}}</td>
        <td>{{.Latitude}}</td>
        <td>{{.Longitude}}</td>
        <td>{{.RecordedAt}}</td>
        <td>{{.UploadedAt}}</td>
        <td>{{if .HasVideo}}<a href="{{.Video}}">{{.Video}}</a>{{else}}<span class="placeholder">{{.Video}}</span>{{end}}</td>
      </tr>
    {{- end}}
    </tbody>
  </table>
  <footer>頁面產生時間（台北）：{{.Now}}</footer>
</div>
</body>
</html>`

type exportPageData struct {
	Columns []string
	Rows    []Row
	Now     string
}

// renderExportPage renders the HTML export view. Zero rows render an empty
// table body, never an error.
func renderExportPage(rows []Row) (string, error) {
	tpl, err := template.New("").Parse(exportPageTpl)
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	if err := tpl.Execute(&buf, exportPageData{
		Columns: Columns,
		Rows:    rows,
		Now:     nowTaipei(),
	}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
