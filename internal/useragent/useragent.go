// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

// Package useragent extracts browser, OS, and device-type hints from a
// User-Agent header. The extraction is substring matching, not a full UA
// database: results annotate audit records and the device-change
// detector, and are never a security control. The Parser interface
// exists so a real UA library can be substituted without touching the
// audit pipeline.
package useragent

import (
	"regexp"
	"strings"
)

// Device types reported by the heuristic parser.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
	DeviceUnknown = "unknown"
)

// DeviceInfo is the best-effort parse result. Empty fields mean "could
// not tell".
type DeviceInfo struct {
	Browser        string `json:"browser,omitempty"`
	BrowserVersion string `json:"browserVersion,omitempty"`
	OS             string `json:"os,omitempty"`
	OSVersion      string `json:"osVersion,omitempty"`
	DeviceType     string `json:"deviceType"`
}

// CompositeKey collapses the fields the device-change detector compares:
// browser, OS, and device type. Versions are deliberately excluded so a
// browser update is not flagged as a new device.
func (d DeviceInfo) CompositeKey() string {
	return d.Browser + "/" + d.OS + "/" + d.DeviceType
}

// Parser turns a raw User-Agent string into a DeviceInfo.
type Parser interface {
	Parse(userAgent string) DeviceInfo
}

// HeuristicParser is the built-in substring/regexp implementation.
type HeuristicParser struct{}

// NewHeuristicParser returns the built-in parser.
func NewHeuristicParser() *HeuristicParser {
	return &HeuristicParser{}
}

var (
	chromeVersionRe  = regexp.MustCompile(`Chrome/([\d.]+)`)
	firefoxVersionRe = regexp.MustCompile(`Firefox/([\d.]+)`)
	safariVersionRe  = regexp.MustCompile(`Version/([\d.]+)`)
	edgeVersionRe    = regexp.MustCompile(`Edg(?:e)?/([\d.]+)`)
	windowsNTRe      = regexp.MustCompile(`Windows NT ([\d.]+)`)
	macOSRe          = regexp.MustCompile(`Mac OS X ([\d_.]+)`)
	androidRe        = regexp.MustCompile(`Android ([\d.]+)`)
	iosRe            = regexp.MustCompile(`OS ([\d_]+) like Mac OS X`)
)

// Parse implements Parser. Order matters in the browser chain: Edge and
// Opera embed "Chrome", Chrome embeds "Safari".
func (p *HeuristicParser) Parse(userAgent string) DeviceInfo {
	info := DeviceInfo{DeviceType: DeviceUnknown}
	if userAgent == "" {
		return info
	}
	ua := userAgent

	switch {
	case strings.Contains(ua, "Edg/") || strings.Contains(ua, "Edge/"):
		info.Browser = "Edge"
		info.BrowserVersion = firstGroup(edgeVersionRe, ua)
	case strings.Contains(ua, "OPR/") || strings.Contains(ua, "Opera"):
		info.Browser = "Opera"
	case strings.Contains(ua, "Firefox/"):
		info.Browser = "Firefox"
		info.BrowserVersion = firstGroup(firefoxVersionRe, ua)
	case strings.Contains(ua, "Chrome/"):
		info.Browser = "Chrome"
		info.BrowserVersion = firstGroup(chromeVersionRe, ua)
	case strings.Contains(ua, "Safari/"):
		info.Browser = "Safari"
		info.BrowserVersion = firstGroup(safariVersionRe, ua)
	case strings.Contains(ua, "curl/"):
		info.Browser = "curl"
	}

	switch {
	case strings.Contains(ua, "Windows"):
		info.OS = "Windows"
		info.OSVersion = firstGroup(windowsNTRe, ua)
	case strings.Contains(ua, "Android"):
		info.OS = "Android"
		info.OSVersion = firstGroup(androidRe, ua)
	case strings.Contains(ua, "iPhone") || strings.Contains(ua, "iPad"):
		info.OS = "iOS"
		info.OSVersion = strings.ReplaceAll(firstGroup(iosRe, ua), "_", ".")
	case strings.Contains(ua, "Mac OS X"):
		info.OS = "macOS"
		info.OSVersion = strings.ReplaceAll(firstGroup(macOSRe, ua), "_", ".")
	case strings.Contains(ua, "Linux"):
		info.OS = "Linux"
	}

	lower := strings.ToLower(ua)
	switch {
	case strings.Contains(lower, "bot") || strings.Contains(lower, "crawler") || strings.Contains(lower, "spider"):
		info.DeviceType = DeviceBot
	case strings.Contains(ua, "iPad") || strings.Contains(lower, "tablet"):
		info.DeviceType = DeviceTablet
	case strings.Contains(ua, "Mobile") || strings.Contains(ua, "iPhone") || strings.Contains(ua, "Android"):
		info.DeviceType = DeviceMobile
	case info.OS != "":
		info.DeviceType = DeviceDesktop
	}

	return info
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
