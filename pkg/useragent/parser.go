// Package useragent classifies the User-Agent strings recorded with
// pixel hits. A uap-go parser backed by a regexes file gives detailed
// browser/OS info; when the file is unavailable a keyword fallback
// still yields a device type.
package useragent

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ua-parser/uap-go/uaparser"
	"go.uber.org/zap"
)

// Parser wraps the uap-go parser with device type detection.
type Parser struct {
	parser *uaparser.Parser
	log    *zap.Logger
}

// DeviceInfo represents parsed device information.
type DeviceInfo struct {
	DeviceType string // mobile, desktop, tablet, bot, unknown
	Browser    string // Chrome, Firefox, Safari, etc.
	OS         string // Windows, iOS, Android, etc.
}

var (
	globalParser *Parser
	once         sync.Once
)

// NewParser creates a parser from a uap-core regexes file.
func NewParser(regexFilePath string, log *zap.Logger) (*Parser, error) {
	regexBytes, err := os.ReadFile(regexFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read regexes file: %w", err)
	}

	parser, err := uaparser.NewFromBytes(regexBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create User-Agent parser: %w", err)
	}

	log.Info("User-Agent parser initialized", zap.String("regexes_file", regexFilePath))

	return &Parser{
		parser: parser,
		log:    log,
	}, nil
}

// GetGlobalParser returns the singleton parser instance, nil when
// InitGlobalParser failed or was never called.
func GetGlobalParser() *Parser {
	return globalParser
}

// InitGlobalParser initializes the global parser instance.
func InitGlobalParser(regexFilePath string, log *zap.Logger) error {
	var err error
	once.Do(func() {
		globalParser, err = NewParser(regexFilePath, log)
	})
	return err
}

// ParseUserAgent parses a User-Agent string.
func (p *Parser) ParseUserAgent(userAgent string) *DeviceInfo {
	if userAgent == "" {
		return &DeviceInfo{DeviceType: "unknown", Browser: "unknown", OS: "unknown"}
	}

	client := p.parser.Parse(userAgent)

	return &DeviceInfo{
		DeviceType: determineDeviceType(client, userAgent),
		Browser:    orUnknown(client.UserAgent.Family),
		OS:         orUnknown(client.Os.Family),
	}
}

// determineDeviceType maps parsed client info to a coarse device type.
func determineDeviceType(client *uaparser.Client, userAgent string) string {
	if isBot(client.UserAgent.Family, userAgent) {
		return "bot"
	}

	osFamily := client.Os.Family
	switch {
	case containsFold(osFamily, "iOS"):
		if containsFold(userAgent, "iPad") {
			return "tablet"
		}
		return "mobile"
	case containsFold(osFamily, "Android"):
		// Android tablets typically lack "Mobile" in the User-Agent
		if !containsFold(userAgent, "Mobile") {
			return "tablet"
		}
		return "mobile"
	case containsFold(osFamily, "Windows Phone"), containsFold(osFamily, "BlackBerry"):
		return "mobile"
	}

	deviceFamily := client.Device.Family
	if containsFold(deviceFamily, "iPad") || containsFold(deviceFamily, "Tablet") || containsFold(deviceFamily, "Kindle") {
		return "tablet"
	}

	for _, desktop := range []string{"Windows", "Mac OS X", "macOS", "Linux", "Ubuntu", "Chrome OS", "FreeBSD"} {
		if containsFold(osFamily, desktop) {
			return "desktop"
		}
	}

	return "unknown"
}

// ClassifyDevice is the keyword fallback used when no parser is
// available.
func ClassifyDevice(userAgent string) string {
	switch {
	case userAgent == "":
		return "unknown"
	case isBot("", userAgent):
		return "bot"
	case containsFold(userAgent, "iPad"), containsFold(userAgent, "Tablet"), containsFold(userAgent, "Kindle"):
		return "tablet"
	case containsFold(userAgent, "Mobile"), containsFold(userAgent, "Android"), containsFold(userAgent, "iPhone"):
		return "mobile"
	default:
		return "desktop"
	}
}

var botIndicators = []string{
	"Googlebot", "Bingbot", "Slurp", "DuckDuckBot", "Baiduspider",
	"YandexBot", "facebookexternalhit", "Twitterbot", "LinkedInBot",
	"bot", "crawler", "spider", "scraper",
}

func isBot(uaFamily, userAgent string) bool {
	for _, indicator := range botIndicators {
		if containsFold(uaFamily, indicator) || containsFold(userAgent, indicator) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	if s == "" || substr == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func orUnknown(s string) string {
	if s == "" || s == "Other" {
		return "unknown"
	}
	return s
}
