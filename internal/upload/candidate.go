package upload

import (
	"io"
	"strings"
)

// MaxFileSize 单个文件的上限，超过的直接丢弃不上传
const MaxFileSize = 10 * 1024 * 1024

// Candidate 一次粘贴/拖拽事件里待上传的一个文件。
// Content 只在这一次事件的处理过程中有效。
type Candidate struct {
	Name    string
	Size    int64
	MIME    string
	Content io.Reader
}

// Partition 按大小分拣，accepted 和 rejected 都保持原始顺序
func Partition(files []Candidate) (accepted, rejected []Candidate) {
	for _, f := range files {
		if f.Size > MaxFileSize {
			rejected = append(rejected, f)
		} else {
			accepted = append(accepted, f)
		}
	}
	return accepted, rejected
}

// FileKind 决定上传结果渲染成什么样的文本
type FileKind int

const (
	KindGeneric FileKind = iota
	KindImage
)

func Classify(mime string) FileKind {
	if strings.HasPrefix(mime, "image/") {
		return KindImage
	}
	return KindGeneric
}

// FormatResult 图片渲染成 Markdown 图片语法，其他文件直接给裸链接
func FormatResult(kind FileKind, name, downloadURL string) string {
	if kind == KindImage {
		return "![" + name + "](" + downloadURL + ")"
	}
	return downloadURL
}
