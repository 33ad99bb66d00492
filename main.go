package main

import (
	"flag"
	"fmt"
	"log"
	"time"
)

func main() {

	// 定义命令行参数
	var (
		config           string
		excelFile        string
		userDataDir      string
		profileDirectory string
		headless         bool
		settleSeconds    int

		// 生成清单模式
		baseDir      string
		startDate    string
		dayIncrement int
		groupCount   int
		limit        int
		outputFile   string
	)

	flag.StringVar(&config, "config", "config.json", "JSON上传清单路径 (默认: config.json)")
	flag.StringVar(&excelFile, "excel", "", "Excel批量表路径, 指定后代替JSON清单")
	flag.StringVar(&userDataDir, "user-data-dir", "", "Chrome用户数据目录 (chrome://version 可查)")
	flag.StringVar(&profileDirectory, "profile-directory", "", "Chrome Profile目录名 (例如 'Profile 1')")
	flag.BoolVar(&headless, "headless", false, "无头模式运行浏览器(需要手动登录时建议关闭)")
	flag.IntVar(&settleSeconds, "settle", 60, "相邻任务之间的缓冲等待秒数")

	flag.StringVar(&baseDir, "base-dir", "", "生成清单模式: 素材父目录, 指定后只生成清单不上传")
	flag.StringVar(&startDate, "start-date", "", "生成清单模式: 起始发布时间 \"YYYY-MM-DD HH:MM\" (默认明天此刻)")
	flag.IntVar(&dayIncrement, "day-increment", 1, "生成清单模式: 每组递增的天数")
	flag.IntVar(&groupCount, "group-count", 2, "生成清单模式: 同一天安排的视频数")
	flag.IntVar(&limit, "limit", 0, "生成清单模式: 处理的目录数上限(0为全部)")
	flag.StringVar(&outputFile, "output", "output.json", "生成清单模式: 输出文件路径")

	flag.Parse()

	// 生成清单模式: 只扫描素材目录生成JSON, 不碰浏览器
	if baseDir != "" {
		if err := runManifestGeneration(baseDir, startDate, dayIncrement, groupCount, limit, outputFile); err != nil {
			log.Fatalf("❌ 生成清单失败: %v", err)
		}
		return
	}

	// 1. 检查并安装 Playwright
	if err := ensurePlaywrightInstalled(); err != nil {
		log.Fatalf("❌ 环境初始化失败: %v", err)
	}

	// 2. 读取并校验上传清单
	var tasks []VideoUploadTask
	var err error
	if excelFile != "" {
		log.Printf("📁 检验Excel批量表: %s", excelFile)
		tasks, err = LoadExcelManifest(excelFile)
	} else {
		log.Printf("📁 读取上传清单: %s", config)
		tasks, err = LoadManifest(config)
	}
	if err != nil {
		log.Fatalf("❌ 清单校验失败: %v", err)
	}
	if len(tasks) == 0 {
		log.Fatalf("❌ 清单中没有视频任务")
	}

	// 3. 启动浏览器, 等待手动登录后批量上传
	log.Printf("🚀 共 %d 个上传任务，启动浏览器...", len(tasks))
	report, err := RunOperatorSession(tasks, BrowserOptions{
		Headless:         headless,
		UserDataDir:      userDataDir,
		ProfileDirectory: profileDirectory,
	}, time.Duration(settleSeconds)*time.Second)
	if err != nil {
		log.Fatalf("❌ 上传会话失败: %v", err)
	}

	// 4. 打印上传结果
	PrintBatchReport(report)

	// 5. 程序结束
	log.Println("🎉 本次批量上传结束！")
}

// runManifestGeneration 扫描素材目录并输出上传清单JSON
func runManifestGeneration(baseDir, startDate string, dayIncrement, groupCount, limit int, outputFile string) error {
	start := time.Now().AddDate(0, 0, 1)
	if startDate != "" {
		t, err := time.Parse(postTimeLayout, startDate)
		if err != nil {
			return fmt.Errorf("start-date 需要 \"YYYY-MM-DD HH:MM\" 格式: %v", err)
		}
		start = t
	}

	tasks, err := BuildUploadManifest(ScheduleOptions{
		BaseDir:      baseDir,
		StartDate:    start,
		DayIncrement: dayIncrement,
		GroupCount:   groupCount,
		Limit:        limit,
	})
	if err != nil {
		return err
	}
	if err := WriteManifest(tasks, outputFile); err != nil {
		return err
	}

	log.Printf("✅ 已生成 %d 条任务到 %s", len(tasks), outputFile)
	return nil
}
