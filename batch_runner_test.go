package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTasks(n int) []VideoUploadTask {
	tasks := make([]VideoUploadTask, n)
	for i := range tasks {
		tasks[i] = VideoUploadTask{
			Title:    fmt.Sprintf("视频%d", i+1),
			PostTime: "2025-02-28 15:30",
			Index:    i + 1,
		}
	}
	return tasks
}

func TestRunUploadBatch_InvokesAllInOrder(t *testing.T) {
	tasks := makeTasks(4)

	var attempted []string
	report := RunUploadBatch(tasks, func(task VideoUploadTask) error {
		attempted = append(attempted, task.Title)
		return nil
	}, BatchOptions{})

	assert.Equal(t, []string{"视频1", "视频2", "视频3", "视频4"}, attempted)
	assert.Len(t, report.Succeeded, 4)
	assert.Empty(t, report.Failed)
	assert.NoError(t, report.Fatal)
}

func TestRunUploadBatch_ItemFailureDoesNotAbortBatch(t *testing.T) {
	tasks := makeTasks(4)

	var attempted int
	report := RunUploadBatch(tasks, func(task VideoUploadTask) error {
		attempted++
		if task.Index == 2 {
			return &StageTimeoutError{Stage: "open_create_menu", Selector: "//ytcp-button", Timeout: slowWait}
		}
		return nil
	}, BatchOptions{})

	// 第2个失败后, 第3、4个仍被执行
	assert.Equal(t, 4, attempted)
	assert.Len(t, report.Succeeded, 3)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, 2, report.Failed[0].Task.Index)
	assert.NoError(t, report.Fatal)
}

func TestRunUploadBatch_SettleDelayBetweenItemsOnly(t *testing.T) {
	var slept []time.Duration
	opts := BatchOptions{
		SettleDelay: 60 * time.Second,
		Sleep:       func(d time.Duration) { slept = append(slept, d) },
	}

	RunUploadBatch(makeTasks(3), func(VideoUploadTask) error { return nil }, opts)

	// 3个任务只有2次缓冲等待, 最后一个之后没有
	require.Len(t, slept, 2)
	for _, d := range slept {
		assert.Equal(t, 60*time.Second, d)
	}

	slept = nil
	RunUploadBatch(makeTasks(1), func(VideoUploadTask) error { return nil }, opts)
	assert.Empty(t, slept)
}

func TestRunUploadBatch_FatalErrorAbortsRemaining(t *testing.T) {
	tasks := makeTasks(4)

	var attempted int
	report := RunUploadBatch(tasks, func(task VideoUploadTask) error {
		attempted++
		if task.Index == 2 {
			return &DriverFatalError{Err: fmt.Errorf("页面连接断开")}
		}
		return nil
	}, BatchOptions{})

	assert.Equal(t, 2, attempted)
	assert.Len(t, report.Succeeded, 1)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, 2, report.Failed[0].Task.Index)
	require.Error(t, report.Fatal)
	assert.Contains(t, report.Fatal.Error(), "浏览器会话不可用")
}

func TestRunUploadBatch_WritesLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")
	logFile, err := os.Create(logPath)
	require.NoError(t, err)
	defer logFile.Close()

	RunUploadBatch(makeTasks(2), func(task VideoUploadTask) error {
		if task.Index == 2 {
			return &InvalidScheduleError{Value: "乱七八糟"}
		}
		return nil
	}, BatchOptions{LogFile: logFile})

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "第1个视频上传成功")
	assert.Contains(t, content, "第2个视频上传失败")
	assert.Contains(t, content, "发布时间格式错误")
}
