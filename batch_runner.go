package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// UploadFailure 单个任务的失败记录
type UploadFailure struct {
	Task   VideoUploadTask
	Reason error
}

// BatchReport 批量上传结果, 成功和失败分别累积, 便于收尾时核对
type BatchReport struct {
	Succeeded []VideoUploadTask
	Failed    []UploadFailure

	// Fatal 非空表示浏览器会话级故障导致批次提前中止
	Fatal error
}

// BatchOptions 批量执行选项
type BatchOptions struct {
	// SettleDelay 相邻两个任务之间的缓冲等待, 等平台后端消化上一个视频,
	// 紧接着开新任务容易在页面上抢占资源
	SettleDelay time.Duration

	// Sleep 可注入, 测试时替换掉真实等待
	Sleep func(time.Duration)

	LogFile *os.File
}

// RunUploadBatch 按清单顺序逐个执行上传, 单个任务失败只记录并继续,
// 只有会话级故障才中止剩余任务
func RunUploadBatch(tasks []VideoUploadTask, upload func(VideoUploadTask) error, opts BatchOptions) BatchReport {
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var report BatchReport
	for i, task := range tasks {
		if i > 0 && opts.SettleDelay > 0 {
			log.Printf("⏳ 等待 %v 后开始下一个任务...", opts.SettleDelay)
			sleep(opts.SettleDelay)
		}

		log.Printf("🚀 开始第 %d/%d 个任务: %s", i+1, len(tasks), task.Title)
		err := upload(task)
		if err == nil {
			log.Printf("✅ 第 %d 个任务完成: %s", i+1, task.Title)
			report.Succeeded = append(report.Succeeded, task)
			writeUploadLog(opts.LogFile, task, nil)
			continue
		}

		log.Printf("❌ 第 %d 个任务失败: %s - %v", i+1, task.Title, err)
		report.Failed = append(report.Failed, UploadFailure{Task: task, Reason: err})
		writeUploadLog(opts.LogFile, task, err)

		var fatal *DriverFatalError
		if errors.As(err, &fatal) {
			log.Printf("🚨 浏览器会话异常, 中止剩余 %d 个任务", len(tasks)-i-1)
			report.Fatal = err
			break
		}
	}
	return report
}

// createUploadLogFile 创建本次运行的日志文件
func createUploadLogFile() (*os.File, error) {
	// 确保log目录存在
	logDir := "log"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("创建日志目录失败: %v", err)
	}

	logFilename := filepath.Join(logDir, fmt.Sprintf("youtube_uploader_%s.log",
		time.Now().Format("20060102_150405")))

	logFile, err := os.Create(logFilename)
	if err != nil {
		return nil, fmt.Errorf("创建日志文件失败: %v", err)
	}

	log.Printf("✅ 日志文件创建成功: %s", logFilename)
	return logFile, nil
}

// writeUploadLog 记录单个任务的处理结果
func writeUploadLog(logFile *os.File, task VideoUploadTask, uploadErr error) {
	if logFile == nil {
		return
	}
	stamp := time.Now().Format("20060102_150405")
	if uploadErr != nil {
		fmt.Fprintf(logFile, "❌ %s: 第%d个视频上传失败: %s - 错误: %v\n",
			stamp, task.Index, task.Title, uploadErr)
	} else {
		fmt.Fprintf(logFile, "✅ %s: 第%d个视频上传成功: %s (发布时间 %s)\n",
			stamp, task.Index, task.Title, task.PostTime)
	}
}

// PrintBatchReport 打印上传结果统计
func PrintBatchReport(report BatchReport) {
	log.Println("\n📊 ===== 上传结果统计 =====")

	for _, task := range report.Succeeded {
		log.Printf("✅ 第%d个: %s - 成功", task.Index, task.Title)
	}
	for _, failure := range report.Failed {
		log.Printf("❌ 第%d个: %s - 失败: %v", failure.Task.Index, failure.Task.Title, failure.Reason)
	}

	log.Printf("📈 总计: %d 成功, %d 失败", len(report.Succeeded), len(report.Failed))

	if report.Fatal != nil {
		log.Printf("🚨 批次因浏览器会话异常提前中止: %v", report.Fatal)
	} else if len(report.Failed) > 0 {
		log.Printf("⚠️ 有 %d 个视频上传失败, 可根据日志手动补传", len(report.Failed))
	}
}
