package web

import "html/template"

var homeTemplate = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Run Coach</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            min-height: 100vh;
            display: flex;
            align-items: center;
            justify-content: center;
            padding: 20px;
        }
        .container {
            background: white;
            border-radius: 20px;
            box-shadow: 0 20px 60px rgba(0,0,0,0.3);
            padding: 40px;
            max-width: 800px;
            width: 100%;
        }
        h1 { color: #333; margin-bottom: 10px; font-size: 2.5em; }
        .block {
            background: #f8f9fa;
            padding: 20px;
            border-radius: 10px;
            margin: 20px 0;
        }
        .block h3 {
            color: #333;
            margin-bottom: 15px;
            font-size: 1.3em;
            border-bottom: 2px solid #667eea;
            padding-bottom: 10px;
        }
        .runs-list ul { list-style-type: disc; padding-left: 20px; margin: 8px 0; }
        .runs-list ul ul { list-style-type: circle; padding-left: 30px; margin-top: 4px; }
        .runs-list li { margin: 4px 0; }
        .analysis-content {
            background: white;
            padding: 20px;
            border-radius: 8px;
            margin-top: 10px;
            line-height: 1.5;
        }
        .analysis-content p { margin: 6px 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Run Coach</h1>

        <div class="block">
            <h3>Recent runs</h3>
            <div class="runs-list">
                {{.RecentRunsHTML}}
            </div>
        </div>

        <div class="block">
            <h3>Analysis and suggested next run</h3>
            <div class="analysis-content">
                {{.SuggestionHTML}}
            </div>
        </div>
    </div>
</body>
</html>
`))
