package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/playwright-community/playwright-go"
)

// BrowserOptions 浏览器启动选项
type BrowserOptions struct {
	Headless bool

	// UserDataDir Chrome用户数据目录, 指定后使用持久化上下文,
	// 登录态可以跨运行保留 (chrome://version 可查)
	UserDataDir string

	// ProfileDirectory Chrome Profile目录名, 例如 "Profile 1"
	ProfileDirectory string
}

// BrowserSession 一次运行期间的浏览器会话
// 句柄的生命周期统一归会话引导管理, 各步骤只借用页面
type BrowserSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser // 持久化上下文模式下为nil
	context playwright.BrowserContext
	page    playwright.Page
	closed  bool
}

// 反自动化检测: 去掉webdriver标记, 关掉TrustedTypes让富文本注入可用
var antiDetectionScripts = []string{
	`Object.defineProperty(navigator, 'webdriver', { get: () => false });`,
	`window.TrustedTypes = undefined;`,
}

// GenerateBrowser 启动浏览器并准备好上下文和页面
func GenerateBrowser(opts BrowserOptions) (*BrowserSession, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("启动Playwright失败: %v", err)
	}

	args := []string{
		"--start-maximized",
		"--window-size=1920,1080",
		"--disable-gpu",
		"--disable-dev-shm-usage",
		"--no-sandbox",
		"--disable-extensions",
		"--disable-blink-features=AutomationControlled",
		"--disable-blink-features=TrustedTypes",
	}
	if opts.ProfileDirectory != "" {
		args = append(args, "--profile-directory="+opts.ProfileDirectory)
	}

	session := &BrowserSession{pw: pw}

	if opts.UserDataDir != "" {
		// 持久化上下文: 复用指定目录里的登录态
		log.Printf("👤 使用Chrome用户数据目录: %s", opts.UserDataDir)
		context, err := pw.Chromium.LaunchPersistentContext(opts.UserDataDir, playwright.BrowserTypeLaunchPersistentContextOptions{
			Channel:  playwright.String("chrome"),
			Headless: playwright.Bool(opts.Headless),
			Args:     args,
			Viewport: &playwright.Size{Width: 1920, Height: 1080},
		})
		if err != nil {
			pw.Stop()
			return nil, fmt.Errorf("启动持久化浏览器失败: %v", err)
		}
		session.context = context
	} else {
		browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Channel:  playwright.String("chrome"),
			Headless: playwright.Bool(opts.Headless),
			Args:     args,
		})
		if err != nil {
			pw.Stop()
			return nil, fmt.Errorf("启动浏览器失败: %v", err)
		}
		session.browser = browser

		context, err := browser.NewContext(playwright.BrowserNewContextOptions{
			Viewport:  &playwright.Size{Width: 1920, Height: 1080},
			UserAgent: playwright.String("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
		})
		if err != nil {
			session.Close()
			return nil, fmt.Errorf("创建上下文失败: %v", err)
		}
		session.context = context
	}

	for _, script := range antiDetectionScripts {
		content := script
		if err := session.context.AddInitScript(playwright.Script{Content: &content}); err != nil {
			log.Printf("⚠️ 注入反检测脚本失败: %v", err)
		}
	}

	page, err := session.context.NewPage()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("创建页面失败: %v", err)
	}
	session.page = page

	return session, nil
}

// Close 释放浏览器会话, 可重复调用, 只有第一次生效
func (s *BrowserSession) Close() {
	if s == nil || s.closed {
		return
	}
	s.closed = true

	if s.page != nil {
		s.page.Close()
	}
	if s.context != nil {
		s.context.Close()
	}
	if s.browser != nil {
		s.browser.Close()
	}
	if s.pw != nil {
		s.pw.Stop()
	}
	log.Println("✅ 浏览器已关闭")
}

// waitOperatorEnter 阻塞等待操作员在控制台按回车确认
func waitOperatorEnter(prompt string) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	reader.ReadString('\n')
}

// RunOperatorSession 引导整个上传会话:
// 启动浏览器 → 打开Studio首页 → 等操作员手动登录 → 批量上传 → 收尾前再暂停一次
// 无论批次以什么方式结束, 浏览器都会被释放
func RunOperatorSession(tasks []VideoUploadTask, opts BrowserOptions, settle time.Duration) (BatchReport, error) {
	var report BatchReport

	session, err := GenerateBrowser(opts)
	if err != nil {
		return report, err
	}
	defer session.Close()

	log.Println("🌐 打开YouTube Studio首页...")
	if _, err := session.page.Goto(YoutubeStudioPage, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(slowWait.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return report, fmt.Errorf("打开YouTube Studio首页失败: %v", err)
	}

	// 登录是人工步骤, 自动化在这里停住等确认
	waitOperatorEnter("登录YouTube Studio后按回车继续...")

	logFile, err := createUploadLogFile()
	if err != nil {
		log.Printf("⚠️ 创建日志文件失败, 结果只输出到控制台: %v", err)
	} else {
		defer logFile.Close()
	}

	report = RunUploadBatch(tasks, func(task VideoUploadTask) error {
		return runUploadWorkflow(session.page, task)
	}, BatchOptions{SettleDelay: settle, LogFile: logFile})

	// 收尾前留给操作员检查浏览器里的最终状态
	waitOperatorEnter("按回车结束并关闭浏览器...")
	return report, nil
}
