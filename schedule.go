package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ScheduleOptions 清单生成选项
type ScheduleOptions struct {
	BaseDir      string
	StartDate    time.Time
	DayIncrement int // 每组递增的天数
	GroupCount   int // 同一天安排的视频数
	Limit        int // 处理的目录数上限, 0为全部
}

// BuildUploadManifest 扫描基础目录下的子目录生成上传清单
// 每个子目录提供固定三件套: thumbnail.jpg, 一个.mp4视频, description.txt
// 发布日期按分组规则分配: 连续GroupCount个任务同一天, 之后日期加DayIncrement天
func BuildUploadManifest(opts ScheduleOptions) ([]VideoUploadTask, error) {
	entries, err := os.ReadDir(opts.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("读取目录 %s 失败: %v", opts.BaseDir, err)
	}
	if opts.GroupCount <= 0 {
		opts.GroupCount = 1
	}

	var tasks []VideoUploadTask
	postTime := opts.StartDate
	processedInGroup := 0

	// os.ReadDir 已按目录名排序, 隐藏目录跳过
	for _, entry := range entries {
		if opts.Limit > 0 && len(tasks) >= opts.Limit {
			break
		}
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		task, err := taskFromDirectory(filepath.Join(opts.BaseDir, entry.Name()), postTime)
		if err != nil {
			log.Printf("⚠️ 跳过目录 %s: %v", entry.Name(), err)
			continue
		}
		task.Index = len(tasks) + 1
		tasks = append(tasks, task)

		processedInGroup++
		if processedInGroup >= opts.GroupCount {
			postTime = postTime.AddDate(0, 0, opts.DayIncrement)
			processedInGroup = 0
		}
	}

	return tasks, nil
}

// taskFromDirectory 从单个素材目录组装上传任务
func taskFromDirectory(dir string, postTime time.Time) (VideoUploadTask, error) {
	thumbPath := filepath.Join(dir, "thumbnail.jpg")
	if _, err := os.Stat(thumbPath); err != nil {
		return VideoUploadTask{}, fmt.Errorf("缺少 thumbnail.jpg")
	}
	thumbAbs, err := filepath.Abs(thumbPath)
	if err != nil {
		return VideoUploadTask{}, fmt.Errorf("解析封面图路径失败: %v", err)
	}

	videoPath, err := findVideoFile(dir)
	if err != nil {
		return VideoUploadTask{}, err
	}

	title, description, err := parseDescriptionFile(filepath.Join(dir, "description.txt"))
	if err != nil {
		return VideoUploadTask{}, err
	}

	return VideoUploadTask{
		VideoPath:   videoPath,
		Thumbnail:   thumbAbs,
		Title:       title,
		Description: description,
		PostTime:    postTime.Format(postTimeLayout),
	}, nil
}

// findVideoFile 按扩展名在目录里找.mp4视频文件
func findVideoFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("读取目录失败: %v", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".mp4") {
			return filepath.Abs(filepath.Join(dir, entry.Name()))
		}
	}
	return "", fmt.Errorf("未找到 .mp4 视频文件")
}

// parseDescriptionFile 读取description.txt: 第2行是标题, 第3行起是描述正文
// 行数不足时对应字段为空
func parseDescriptionFile(path string) (string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("缺少 description.txt")
	}

	lines := strings.Split(string(data), "\n")
	var title, description string
	if len(lines) >= 2 {
		title = strings.TrimSpace(lines[1])
	}
	if len(lines) >= 3 {
		description = strings.TrimSpace(strings.Join(lines[2:], "\n"))
	}
	return title, description, nil
}

// WriteManifest 把任务清单写成JSON文件, 上传模式可直接读取
func WriteManifest(tasks []VideoUploadTask, outputPath string) error {
	data, err := json.MarshalIndent(UploadBatch{Videos: tasks}, "", "    ")
	if err != nil {
		return fmt.Errorf("序列化清单失败: %v", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("写入清单文件失败: %v", err)
	}
	return nil
}
