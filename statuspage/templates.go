package statuspage

const statusPageHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Code}} {{.Text}}</title>
<style>
body { font-family: sans-serif; margin: 4em auto; max-width: 40em; color: #333; }
h1 { font-weight: normal; }
code { color: #999; }
</style>
</head>
<body>
<h1>{{.Text}} <code>{{.Code}}</code></h1>
<p>{{.Message}}</p>
</body>
</html>
`

const statusPageText = `{{.Code}} {{.Text}}

{{.Message}}
`
