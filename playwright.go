package main

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// ensurePlaywrightInstalled 确保浏览器驱动环境就绪
// 优先离线包(可执行文件旁的 ms-playwright.zip), 其次走官方在线安装
func ensurePlaywrightInstalled() error {
	log.Println("🔍 检查浏览器环境...")

	if isPlaywrightAlreadyInstalled() {
		log.Println("✅ Playwright 已安装")
		return nil
	}

	log.Println("⚠️ Playwright 未安装，尝试从本地 ZIP 文件安装...")
	if err := installPlaywrightFromZip(); err != nil {
		log.Printf("⚠️ 离线包安装不可用: %v，改用在线安装", err)
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return fmt.Errorf("在线安装失败: %v", err)
		}
	}

	// 再次验证安装
	if !isPlaywrightAlreadyInstalled() {
		return fmt.Errorf("安装后验证失败")
	}

	log.Println("✅ Playwright 安装完成")
	return nil
}

// isPlaywrightAlreadyInstalled 检查 Playwright 是否已安装
func isPlaywrightAlreadyInstalled() bool {
	playwrightPath := getPlaywrightPath()
	entries, err := os.ReadDir(playwrightPath)
	if err != nil {
		log.Printf("❌ Playwright 目录不存在: %s", playwrightPath)
		return false
	}

	// 检查是否有 Chromium 浏览器 (目录名形如 chromium-1169)
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "chromium") {
			log.Printf("✅ Playwright 已安装: %s", playwrightPath)
			return true
		}
	}

	log.Printf("❌ Chromium 浏览器不存在: %s", playwrightPath)
	return false
}

// getPlaywrightPath 获取 Playwright 安装路径
// Windows在 %LOCALAPPDATA%\ms-playwright, 其他系统在 ~/.cache/ms-playwright
func getPlaywrightPath() string {
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = os.Getenv("USERPROFILE") + "\\AppData\\Local"
		}
		return filepath.Join(localAppData, "ms-playwright")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "ms-playwright"
	}
	return filepath.Join(home, ".cache", "ms-playwright")
}

// installPlaywrightFromZip 从 ZIP 文件安装 Playwright
func installPlaywrightFromZip() error {
	zipPath := getZipFilePath()
	log.Printf("📦 检查 ZIP 文件: %s", zipPath)

	if _, err := os.Stat(zipPath); err != nil {
		return fmt.Errorf("ZIP 文件不存在: %s", zipPath)
	}

	targetDir := getPlaywrightPath()
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return fmt.Errorf("创建目录失败: %v", err)
	}

	log.Printf("📁 解压到: %s", targetDir)
	if err := unzip(zipPath, targetDir); err != nil {
		return fmt.Errorf("解压失败: %v", err)
	}

	log.Println("✅ ZIP 文件解压完成")
	return nil
}

// getZipFilePath 获取 ZIP 文件路径
func getZipFilePath() string {
	exeDir := getExecutableDir()
	return filepath.Join(exeDir, "ms-playwright.zip")
}

// getExecutableDir 获取可执行文件所在目录
func getExecutableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// unzip 解压 ZIP 文件
func unzip(src, dest string) error {
	log.Printf("🔓 正在解压 %s 到 %s", src, dest)

	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := os.MkdirAll(dest, 0755); err != nil {
		return err
	}

	for _, f := range r.File {
		fpath := filepath.Join(dest, f.Name)
		// 防止条目路径逃出目标目录
		if !strings.HasPrefix(fpath, filepath.Clean(dest)+string(os.PathSeparator)) {
			return fmt.Errorf("非法的压缩包条目: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(fpath, 0755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(fpath), 0755); err != nil {
			return err
		}

		outFile, err := os.OpenFile(fpath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
		if err != nil {
			return err
		}

		rc, err := f.Open()
		if err != nil {
			outFile.Close()
			return err
		}

		_, err = io.Copy(outFile, rc)

		outFile.Close()
		rc.Close()

		if err != nil {
			return err
		}
	}

	return nil
}
