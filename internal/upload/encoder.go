package upload

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// EncodeDataURL 把文件内容整个读进来，编成 data-URL 形式的 base64。
// 读失败时错误原样返回，由流水线降级处理，不会让整批上传中断。
func EncodeDataURL(c Candidate) (string, error) {
	raw, err := io.ReadAll(c.Content)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", c.Name, err)
	}
	return fmt.Sprintf("data:%s;base64,%s", c.MIME, base64.StdEncoding.EncodeToString(raw)), nil
}

// StripDataURLPrefix 去掉 data:xxx;base64, 前缀，Gitee 接口只要纯 base64
func StripDataURLPrefix(s string) string {
	if i := strings.Index(s, "base64,"); i >= 0 {
		return s[i+len("base64,"):]
	}
	return s
}
