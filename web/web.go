// Package web 内嵌 HTML 模板和静态文件
package web

import "embed"

//go:embed templates/*.html
var Templates embed.FS

//go:embed static
var Static embed.FS
