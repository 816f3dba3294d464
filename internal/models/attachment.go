package models

import "time"

// Attachment 一次成功上传的记录
type Attachment struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	FileName    string `gorm:"size:255" json:"file_name"`
	RepoPath    string `gorm:"size:512" json:"repo_path"`
	DownloadURL string `gorm:"size:1024" json:"download_url"`
	MIMEType    string `gorm:"size:128" json:"mime_type"`
	Size        int64  `json:"size"`

	CreatedAt time.Time `json:"created_at"`
}
