package history

import (
	"context"

	"giteeup/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service 记录并查询上传历史。db 为 nil 时（MySQL 没连上）全部变成空操作，
// 上传流程本身不依赖历史记录。
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Enabled() bool {
	return s != nil && s.db != nil
}

// RecordUpload 写一条历史。写失败只记日志，不影响上传结果。
func (s *Service) RecordUpload(ctx context.Context, name, repoPath, downloadURL, mime string, size int64) {
	if !s.Enabled() {
		return
	}

	att := models.Attachment{
		FileName:    name,
		RepoPath:    repoPath,
		DownloadURL: downloadURL,
		MIMEType:    mime,
		Size:        size,
	}
	if err := s.db.WithContext(ctx).Create(&att).Error; err != nil {
		zap.L().Error("record upload history failed", zap.String("file", name), zap.Error(err))
	}
}

// Recent 最近的上传记录，新的在前
func (s *Service) Recent(ctx context.Context, limit int) ([]models.Attachment, error) {
	if !s.Enabled() {
		return []models.Attachment{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var list []models.Attachment
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}
