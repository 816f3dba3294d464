package upload

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"giteeup/internal/notice"
	"giteeup/internal/settings"

	"go.uber.org/zap"
)

// Uploader 是远端内容仓库的最小接口，生产实现是 gitee.Client
type Uploader interface {
	CreateFile(ctx context.Context, cfg settings.Settings, repoPath, content string) (string, error)
}

// Recorder 记录成功的上传，留作历史查询。可以为 nil。
type Recorder interface {
	RecordUpload(ctx context.Context, name, repoPath, downloadURL, mime string, size int64)
}

type Pipeline struct {
	uploader Uploader
	recorder Recorder
}

func NewPipeline(u Uploader, r Recorder) *Pipeline {
	return &Pipeline{uploader: u, recorder: r}
}

// Run 处理一个批次：分拣 → 并发逐个编码上传 → 过滤空结果 → 换行拼接。
// 单个文件失败只会变成一条提示加一个空结果，整批永远跑完。
// 拼接结果按文件原始顺序排，跟各个上传谁先完成无关。
func (p *Pipeline) Run(ctx context.Context, cfg settings.Settings, subPath string, files []Candidate, notices *notice.Collector) string {
	accepted, rejected := Partition(files)

	// 超限的文件整批只提示一次，把名字都列出来
	if len(rejected) > 0 {
		names := make([]string, len(rejected))
		for i, f := range rejected {
			names[i] = f.Name
		}
		notices.Add(strings.Join(names, "、") + "将会被丢弃，大小超过了 10MB 限制")
	}

	results := make([]string, len(accepted))
	var wg sync.WaitGroup
	for i, f := range accepted {
		wg.Add(1)
		go func(i int, f Candidate) {
			defer wg.Done()
			results[i] = p.uploadOne(ctx, cfg, subPath, f, notices)
		}(i, f)
	}
	wg.Wait()

	return JoinResults(results)
}

func (p *Pipeline) uploadOne(ctx context.Context, cfg settings.Settings, subPath string, f Candidate, notices *notice.Collector) string {
	encoded, err := EncodeDataURL(f)
	if err != nil {
		zap.L().Warn("read file failed", zap.String("file", f.Name), zap.Error(err))
		notices.Add(fmt.Sprintf("读取 %s 失败", f.Name))
		return ""
	}

	repoPath := JoinRepoPath(cfg.BasePath, subPath, f.Name)
	url, err := p.uploader.CreateFile(ctx, cfg, repoPath, StripDataURLPrefix(encoded))
	if err != nil {
		zap.L().Warn("upload failed", zap.String("file", f.Name), zap.Error(err))
		notices.Add(fmt.Sprintf("%s 上传失败：%s", f.Name, err.Error()))
		return ""
	}

	if p.recorder != nil {
		p.recorder.RecordUpload(ctx, f.Name, repoPath, url, f.MIME, f.Size)
	}
	return FormatResult(Classify(f.MIME), f.Name, url)
}

// JoinRepoPath 拼出仓库内路径 basePath/subPath/fileName。
// 子路径是用户原样输入的，不做任何校验或清洗；basePath 默认是 "/"，
// 两头的斜杠要去掉，不然拼出来全是空段。
func JoinRepoPath(basePath, subPath, name string) string {
	var segs []string
	if s := strings.Trim(basePath, "/"); s != "" {
		segs = append(segs, s)
	}
	if subPath != "" {
		segs = append(segs, subPath)
	}
	segs = append(segs, name)
	return strings.Join(segs, "/")
}

// JoinResults 丢掉空结果再拼接。空串代表失败或被跳过的文件。
func JoinResults(results []string) string {
	var kept []string
	for _, r := range results {
		if r != "" {
			kept = append(kept, r)
		}
	}
	return strings.Join(kept, "\n")
}
