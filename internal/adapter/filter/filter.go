package filter

import (
	"path"
	"regexp"
)

// keywordPattern 匹配 BIP-353 / BIP353，不区分大小写
var keywordPattern = regexp.MustCompile(`(?i)BIP-?353`)

// seedDirs 代码遍历只从这些顶层目录开始，限制 API 调用量
var seedDirs = map[string]bool{
	"src":   true,
	"lib":   true,
	"core":  true,
	"docs":  true,
	"test":  true,
	"tests": true,
}

// sourceExtensions 需要检查内容的源码文件扩展名
var sourceExtensions = map[string]bool{
	".py":   true,
	".js":   true,
	".ts":   true,
	".go":   true,
	".c":    true,
	".cpp":  true,
	".h":    true,
	".rs":   true,
	".java": true,
}

// MentionsKeyword 文本中是否提到 BIP-353
func MentionsKeyword(text string) bool {
	return keywordPattern.MatchString(text)
}

// IssueMentionsKeyword 检查 issue 标题与正文的拼接
func IssueMentionsKeyword(title, body string) bool {
	return MentionsKeyword(title + body)
}

// IsSeedDir 顶层目录是否需要遍历（名称区分大小写）
func IsSeedDir(name string) bool {
	return seedDirs[name]
}

// IsSourceFile 根据扩展名判断是否为需要检查的源码文件
func IsSourceFile(name string) bool {
	return sourceExtensions[path.Ext(name)]
}
