// Package fetch downloads and unpacks the published IAC database archive.
// The publisher exposes a download page linking to a zip that contains the
// database workbook; this package discovers the link, streams the archive to
// disk and extracts the workbook. Retries and scheduling belong to callers.
package fetch

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Client downloads taxonomy source files over HTTP.
type Client struct {
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
		log: log,
	}
}

// DiscoverArchiveURL fetches the download page and returns the first linked
// zip archive, resolved against the page URL.
func (c *Client) DiscoverArchiveURL(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch download page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch download page %s: status %d", pageURL, resp.StatusCode)
	}

	href, err := FindZipLink(resp.Body)
	if err != nil {
		return "", err
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse page url: %w", err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse archive link %q: %w", href, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// FindZipLink scans an HTML document for the first anchor pointing at a zip.
func FindZipLink(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse download page: %w", err)
	}
	var walk func(*html.Node) string
	walk = func(n *html.Node) string {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" && strings.HasSuffix(strings.ToLower(attr.Val), ".zip") {
					return attr.Val
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if href := walk(child); href != "" {
				return href
			}
		}
		return ""
	}
	href := walk(doc)
	if href == "" {
		return "", fmt.Errorf("no zip link found on download page")
	}
	return href, nil
}

// Download streams the archive at url to destPath.
func (c *Client) Download(ctx context.Context, rawURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: status %d", rawURL, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}
	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer f.Close()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	c.log.Info("downloaded archive", "url", rawURL, "path", destPath, "bytes", n)
	return nil
}

// ExtractWorkbook unpacks the first spreadsheet member of a zip archive into
// destDir and returns its path.
func ExtractWorkbook(zipPath, destDir string) (string, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("open archive %s: %w", zipPath, err)
	}
	defer zr.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create extract dir: %w", err)
	}

	for _, member := range zr.File {
		name := strings.ToLower(member.Name)
		if !strings.HasSuffix(name, ".xls") && !strings.HasSuffix(name, ".xlsx") {
			continue
		}
		dest := filepath.Join(destDir, filepath.Base(member.Name))
		if err := extractMember(member, dest); err != nil {
			return "", err
		}
		return dest, nil
	}
	return "", fmt.Errorf("no spreadsheet found in archive %s", zipPath)
}

func extractMember(member *zip.File, dest string) error {
	src, err := member.Open()
	if err != nil {
		return fmt.Errorf("open archive member %s: %w", member.Name, err)
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("extract %s: %w", member.Name, err)
	}
	return nil
}

// FetchDatabase downloads the IAC database archive and places the extracted
// workbook at destPath. The direct archive URL is used as-is; when a download
// page URL is given instead, the zip link is discovered from the page first.
func (c *Client) FetchDatabase(ctx context.Context, archiveURL, pageURL, destPath string) error {
	if archiveURL == "" && pageURL != "" {
		discovered, err := c.DiscoverArchiveURL(ctx, pageURL)
		if err != nil {
			return err
		}
		archiveURL = discovered
	}
	if archiveURL == "" {
		return fmt.Errorf("no archive URL configured")
	}

	tmpDir, err := os.MkdirTemp("", "codetree-fetch-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	zipPath := filepath.Join(tmpDir, "database.zip")
	if err := c.Download(ctx, archiveURL, zipPath); err != nil {
		return err
	}

	extracted, err := ExtractWorkbook(zipPath, tmpDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := copyFile(extracted, destPath); err != nil {
		return err
	}
	c.log.Info("database workbook ready", "path", destPath)
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy to %s: %w", dest, err)
	}
	return nil
}
