package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	pdf "github.com/dslipak/pdf"
	"golang.org/x/net/html"

	"github.com/mueblesrd/support-rag/internal/config"
	"github.com/mueblesrd/support-rag/internal/db"
	"github.com/mueblesrd/support-rag/internal/llm"
	"github.com/mueblesrd/support-rag/internal/policy"
)

func main() {
	categoryFlag := flag.String("category", "", "policy category (warranty, claims, delivery, compliance, general)")
	fromFiles := flag.Bool("from-files", false, "import from local files (.md/.txt/.html/.pdf)")
	pathFlag := flag.String("path", "", "base directory for local files")
	fromURL := flag.Bool("from-url", false, "import via HTTP crawl")
	baseURLFlag := flag.String("base-url", "", "base URL for the crawl")
	maxPagesFlag := flag.Int("max-pages", 50, "page limit for the HTTP crawl")
	flag.Parse()

	if *categoryFlag == "" {
		log.Fatal("required: --category")
	}
	category := policy.Category(*categoryFlag)
	switch category {
	case policy.CategoryWarranty, policy.CategoryClaims, policy.CategoryDelivery,
		policy.CategoryCompliance, policy.CategoryGeneral:
	default:
		log.Fatalf("unknown category %q", *categoryFlag)
	}

	if !*fromFiles && !*fromURL {
		log.Fatal("use at least one mode: --from-files or --from-url")
	}

	ctx := context.Background()
	cfg := config.Load()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	repo := policy.NewPgRepository(pool)

	geminiClient, err := llm.NewGeminiClient(ctx)
	if err != nil {
		log.Fatalf("init gemini client: %v", err)
	}

	if *fromFiles {
		if *pathFlag == "" {
			log.Fatal("--path is required with --from-files")
		}
		if err := importFromFiles(ctx, repo, geminiClient, category, *pathFlag); err != nil {
			log.Fatalf("import files: %v", err)
		}
	}

	if *fromURL {
		if *baseURLFlag == "" {
			log.Fatal("--base-url is required with --from-url")
		}
		if err := importFromHTTP(ctx, repo, geminiClient, category, *baseURLFlag, *maxPagesFlag); err != nil {
			log.Fatalf("import http: %v", err)
		}
	}

	log.Println("import finished")
}

func importFromFiles(
	ctx context.Context,
	repo *policy.PgRepository,
	gemini *llm.GeminiClient,
	category policy.Category,
	rootPath string,
) error {
	log.Printf("importing local policy docs from %s category=%s", rootPath, category)

	return filepath.WalkDir(rootPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !isSupportedFile(path) {
			return nil
		}

		lpath := strings.ToLower(path)
		var content string

		switch {
		case strings.HasSuffix(lpath, ".pdf"):
			text, err := extractTextFromPDF(path)
			if err != nil {
				return fmt.Errorf("read pdf %s: %w", path, err)
			}
			content = text

		case strings.HasSuffix(lpath, ".html") || strings.HasSuffix(lpath, ".htm"):
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			content = extractMainText(string(data))

		default:
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			content = string(data)
		}

		content = strings.TrimSpace(content)
		content = sanitizeUTF8(content)
		if content == "" {
			return nil
		}

		title := filenameToTitle(path)
		return chunkAndStore(ctx, repo, gemini, category, title, content)
	})
}

func importFromHTTP(
	ctx context.Context,
	repo *policy.PgRepository,
	gemini *llm.GeminiClient,
	category policy.Category,
	baseURL string,
	maxPages int,
) error {
	log.Printf("http crawl: base=%s category=%s maxPages=%d", baseURL, category, maxPages)

	base, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base-url: %w", err)
	}

	visited := make(map[string]bool)
	queue := []string{base.String()}
	pages := 0

	for len(queue) > 0 && pages < maxPages {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true
		pages++

		log.Printf("fetching %s", current)
		resp, err := http.Get(current)
		if err != nil {
			log.Printf("GET %s: %v", current, err)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			log.Printf("status %d at %s", resp.StatusCode, current)
			resp.Body.Close()
			continue
		}

		bodyBytes, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			log.Printf("read body %s: %v", current, err)
			continue
		}

		htmlStr := string(bodyBytes)
		text := strings.TrimSpace(extractMainText(htmlStr))
		text = sanitizeUTF8(text)
		if text != "" {
			title := urlToTitle(current, base)
			if err := chunkAndStore(ctx, repo, gemini, category, title, text); err != nil {
				log.Printf("store chunks from %s: %v", current, err)
			}
		}

		for _, link := range extractLinks(htmlStr, base) {
			if !visited[link] {
				queue = append(queue, link)
			}
		}
	}

	return nil
}

func isSupportedFile(path string) bool {
	l := strings.ToLower(path)
	return strings.HasSuffix(l, ".md") ||
		strings.HasSuffix(l, ".txt") ||
		strings.HasSuffix(l, ".html") ||
		strings.HasSuffix(l, ".htm") ||
		strings.HasSuffix(l, ".pdf")
}

func filenameToTitle(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "-", " ")
	return strings.TrimSpace(base)
}

func urlToTitle(raw string, base *url.URL) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.Path == base.Path || u.Path == base.Path+"/" {
		return "Overview"
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	last := parts[len(parts)-1]
	last = strings.SplitN(last, ".", 2)[0]
	last = strings.ReplaceAll(last, "-", " ")
	return strings.TrimSpace(last)
}

func extractMainText(htmlStr string) string {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(*html.Node, bool)

	walk = func(n *html.Node, skip bool) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				skip = true
			}
		}

		if n.Type == html.TextNode && !skip {
			t := strings.TrimSpace(n.Data)
			if t != "" {
				b.WriteString(t)
				b.WriteString("\n")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, skip)
		}
	}
	walk(doc, false)

	lines := strings.Split(b.String(), "\n")
	var filtered []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" && len(l) > 1 {
			filtered = append(filtered, l)
		}
	}
	return strings.Join(filtered, "\n")
}

func extractLinks(htmlStr string, base *url.URL) []string {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return nil
	}
	var links []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, a := range n.Attr {
				if a.Key == "href" {
					h := strings.TrimSpace(a.Val)
					if h == "" || strings.HasPrefix(h, "#") {
						continue
					}
					u, err := url.Parse(h)
					if err != nil {
						continue
					}
					u = base.ResolveReference(u)

					if u.Host != base.Host {
						continue
					}

					if strings.HasSuffix(u.Path, ".css") ||
						strings.HasSuffix(u.Path, ".js") ||
						strings.HasSuffix(u.Path, ".png") ||
						strings.HasSuffix(u.Path, ".jpg") ||
						strings.HasSuffix(u.Path, ".svg") {
						continue
					}

					links = append(links, u.Scheme+"://"+u.Host+u.Path)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	seen := make(map[string]bool)
	var out []string
	for _, l := range links {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}

func chunkAndStore(
	ctx context.Context,
	repo *policy.PgRepository,
	gemini *llm.GeminiClient,
	category policy.Category,
	title, content string,
) error {
	const maxLen = 2000

	chunks := splitIntoChunks(content, maxLen)
	if len(chunks) == 0 {
		return nil
	}

	for i, c := range chunks {
		c = strings.TrimSpace(c)
		c = sanitizeUTF8(c)
		if c == "" {
			continue
		}

		chunkTitle := title
		if len(chunks) > 1 {
			chunkTitle = fmt.Sprintf("%s (part %d)", title, i+1)
		}

		// Store the section name as the chunk source so answers can
		// cite it instead of the file it came from.
		doc := &policy.Chunk{
			Category:  category,
			Title:     chunkTitle,
			Content:   c,
			Source:    policy.ExtractSectionTitle(c),
			Tags:      detectTags(c),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		vec, err := gemini.Embed(ctx, c)
		if err != nil {
			return fmt.Errorf("embedding error: %w", err)
		}

		id, err := repo.InsertChunk(ctx, doc, vec)
		if err != nil {
			return fmt.Errorf("insert chunk error: %w", err)
		}

		log.Printf("chunk imported category=%s id=%d len=%d title=%s", category, id, len(c), chunkTitle)
	}

	return nil
}

func splitIntoChunks(content string, maxLen int) []string {
	content = strings.TrimSpace(content)
	content = sanitizeUTF8(content)
	if content == "" {
		return nil
	}
	if len(content) <= maxLen {
		return []string{content}
	}

	var chunks []string
	var buf strings.Builder

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		chunk := strings.TrimSpace(buf.String())
		chunk = sanitizeUTF8(chunk)
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		buf.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		for len(line) > maxLen {
			part := line[:maxLen]
			line = line[maxLen:]

			if buf.Len() > 0 {
				flush()
			}
			buf.WriteString(part)
			flush()
		}

		if buf.Len()+len(line)+1 > maxLen {
			flush()
		}

		buf.WriteString(line)
		buf.WriteRune('\n')
	}

	flush()
	return chunks
}

func detectTags(chunk string) []string {
	s := strings.ToLower(chunk)
	var tags []string

	add := func(t string) {
		for _, ex := range tags {
			if ex == t {
				return
			}
		}
		tags = append(tags, t)
	}

	if strings.Contains(s, "warranty") || strings.Contains(s, "garantie") {
		add("warranty")
	}
	if strings.Contains(s, "law 25") || strings.Contains(s, "loi 25") {
		add("law-25")
	}
	if strings.Contains(s, "delivery") || strings.Contains(s, "livraison") {
		add("delivery")
	}
	if strings.Contains(s, "attachment") || strings.Contains(s, "pièce jointe") {
		add("attachments")
	}
	if strings.Contains(s, "duplicate") || strings.Contains(s, "doublon") {
		add("duplicates")
	}
	if strings.Contains(s, "contract") || strings.Contains(s, "contrat") {
		add("contract")
	}
	if strings.Contains(s, "ads") || strings.Contains(s, "after-sales") {
		add("ads")
	}
	if strings.Contains(s, "aesthetic") || strings.Contains(s, "esthétique") {
		add("aesthetic")
	}
	if strings.Contains(s, "mechanical") || strings.Contains(s, "mécanique") {
		add("mechanical")
	}

	return tags
}

func extractTextFromPDF(path string) (string, error) {
	r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}

	reader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	buf := bytes.NewBuffer(nil)
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", err
	}

	text := strings.TrimSpace(buf.String())
	return sanitizeUTF8(text), nil
}

// drop bytes that are not valid UTF-8 (Postgres rejects them).
func sanitizeUTF8(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			s = s[1:]
			continue
		}
		b.WriteRune(r)
		s = s[size:]
	}
	return b.String()
}
