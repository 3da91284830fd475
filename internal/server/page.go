package server

import (
	"fmt"
	"html/template"
	"strings"

	"DrawdownSentinel/internal/model"
)

const absent = "—"

var pageFuncs = template.FuncMap{
	"price": func(v *float64) string {
		if v == nil {
			return absent
		}
		return fmt.Sprintf("%.2f", *v)
	},
	"percent": func(v *float64) string {
		if v == nil {
			return absent
		}
		return fmt.Sprintf("%.2f%%", *v*100)
	},
	"diagnostics": func(ds []model.Diagnostic) string {
		if len(ds) == 0 {
			return ""
		}
		tags := make([]string, len(ds))
		for i, d := range ds {
			tags[i] = string(d)
		}
		return strings.Join(tags, ", ")
	},
}

var pageTemplate = template.Must(template.New("board").Funcs(pageFuncs).Parse(`<!DOCTYPE html>
<html lang="zh">
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="{{.Refresh}}">
<title>DrawdownSentinel</title>
<style>
body{font-family:sans-serif;margin:2em}
table{border-collapse:collapse}
th,td{padding:.4em .8em;border-bottom:1px solid #ddd;text-align:right}
td.sym,th.sym{text-align:left}
tr.buy{background:#fde2e2} tr.good{background:#fdf0d5} tr.prep{background:#fff9d6} tr.wait{background:#eef6ff}
.diag{color:#b35c00;font-size:.85em}
</style>
</head>
<body>
<h1>ETF 回撤看板</h1>
{{with .Board}}
<p>北京时间 {{.BeijingTime}} · 美西时间 {{.LocalTime}} · 市场状态 {{.Session}} · 周期 #{{.Seq}}</p>
<table>
<tr><th class="sym">标的</th><th>现价</th><th>来源</th><th>昨收</th><th>日高</th><th>历史高点</th><th>回撤</th><th class="sym">状态</th><th class="sym">缺失</th></tr>
{{range .Sheets}}
<tr class="{{.Status}}">
<td class="sym">{{.Symbol}}</td>
<td>{{price .Price}}</td>
<td>{{.PriceSource}}</td>
<td>{{price .PreviousClose}}</td>
<td>{{price .DayHigh}} <small>{{.IntradayInterval}}</small></td>
<td>{{price .ReferenceHigh}} <small>{{.ReferenceHighKind}}</small></td>
<td>{{percent .Drawdown}}</td>
<td class="sym">{{.StatusLabel}}</td>
<td class="sym diag">{{diagnostics .Missing}}</td>
</tr>
{{end}}
</table>
{{else}}
<p>数据加载中…</p>
{{end}}
</body>
</html>
`))
