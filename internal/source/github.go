package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"reviewdiff/internal/diffview"
	"reviewdiff/internal/git"
	"reviewdiff/internal/log"
)

const (
	defaultAPIURL = "https://api.github.com"
	acceptJSON    = "application/vnd.github.v3+json"
	acceptDiff    = "application/vnd.github.v3.diff"
	acceptRaw     = "application/vnd.github.raw+json"
	maxErrorBody  = 200
)

var (
	prURLPattern   = regexp.MustCompile(`github\.com/([\w.-]+)/([\w.-]+)/pull/(\d+)`)
	prShortPattern = regexp.MustCompile(`^([\w.-]+)/([\w.-]+)#(\d+)$`)
	remotePatterns = []*regexp.Regexp{
		regexp.MustCompile(`git@github\.com[:/]([\w.-]+)/([\w.-]+?)(?:\.git)?$`),
		regexp.MustCompile(`github\.com/([\w.-]+)/([\w.-]+?)(?:\.git)?$`),
	}
)

// PR identifies a pull request.
type PR struct {
	Owner  string
	Repo   string
	Number int
}

func (p PR) String() string {
	return fmt.Sprintf("%s/%s#%d", p.Owner, p.Repo, p.Number)
}

// ParsePR accepts a pull request URL or "owner/repo#N".
func ParsePR(input string) (PR, error) {
	input = strings.TrimSpace(input)
	for _, re := range []*regexp.Regexp{prURLPattern, prShortPattern} {
		if m := re.FindStringSubmatch(input); m != nil {
			n, err := strconv.Atoi(m[3])
			if err != nil || n <= 0 {
				return PR{}, fmt.Errorf("%w: bad number in %q", ErrBadPR, input)
			}
			return PR{Owner: m[1], Repo: m[2], Number: n}, nil
		}
	}
	return PR{}, fmt.Errorf("%w: %q (want a URL or owner/repo#N)", ErrBadPR, input)
}

// ResolvePR is ParsePR plus bare numbers ("42" or "#42"), which are
// resolved against the origin remote of the repository at dir.
func ResolvePR(ctx context.Context, dir, input string) (PR, error) {
	bare := strings.TrimPrefix(strings.TrimSpace(input), "#")
	n, err := strconv.Atoi(bare)
	if err != nil {
		return ParsePR(input)
	}
	if n <= 0 {
		return PR{}, fmt.Errorf("%w: bad number %q", ErrBadPR, input)
	}
	remote, err := git.RemoteURL(ctx, dir, "origin")
	if err != nil {
		return PR{}, fmt.Errorf("%w: resolve origin remote: %v", ErrBadPR, err)
	}
	owner, repo, err := parseRemote(remote)
	if err != nil {
		return PR{}, err
	}
	return PR{Owner: owner, Repo: repo, Number: n}, nil
}

func parseRemote(remote string) (string, string, error) {
	for _, re := range remotePatterns {
		if m := re.FindStringSubmatch(remote); m != nil {
			return m[1], m[2], nil
		}
	}
	return "", "", fmt.Errorf("%w: origin %q is not a GitHub remote", ErrBadPR, remote)
}

// GitHubOption configures a GitHub source.
type GitHubOption func(*GitHub)

func WithHTTPClient(c *http.Client) GitHubOption {
	return func(g *GitHub) { g.client = c }
}

// WithBaseURL points the source at another API root, such as a GitHub
// Enterprise server or a test server.
func WithBaseURL(u string) GitHubOption {
	return func(g *GitHub) { g.baseURL = strings.TrimSuffix(u, "/") }
}

func WithToken(token string) GitHubOption {
	return func(g *GitHub) { g.token = token }
}

// WithPaths limits the review to files at or under the given paths.
func WithPaths(paths []string) GitHubOption {
	return func(g *GitHub) { g.paths = paths }
}

// GitHub loads a pull request through the REST API. Each side of a file is
// fetched at the exact base and head commits, so force pushes show up on
// the next load.
type GitHub struct {
	pr      PR
	client  *http.Client
	baseURL string
	token   string
	paths   []string
}

func NewGitHub(pr PR, opts ...GitHubOption) *GitHub {
	g := &GitHub{
		pr:      pr,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultAPIURL,
		token:   envToken(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func envToken() string {
	if t := os.Getenv("GITHUB_TOKEN"); t != "" {
		return t
	}
	return os.Getenv("GH_TOKEN")
}

func (g *GitHub) Describe() string {
	return g.pr.String()
}

func (g *GitHub) Local() bool {
	return false
}

type prRef struct {
	Ref  string `json:"ref"`
	SHA  string `json:"sha"`
	Repo *struct {
		FullName string `json:"full_name"`
	} `json:"repo"`
}

type pullRequest struct {
	Title string `json:"title"`
	Base  prRef  `json:"base"`
	Head  prRef  `json:"head"`
}

func (g *GitHub) Load(ctx context.Context) ([]diffview.FileDiff, error) {
	prPath := fmt.Sprintf("/repos/%s/%s/pulls/%d", g.pr.Owner, g.pr.Repo, g.pr.Number)

	meta, err := g.get(ctx, prPath, acceptJSON)
	if err != nil {
		return nil, err
	}
	var pull pullRequest
	if err := json.Unmarshal(meta, &pull); err != nil {
		return nil, fmt.Errorf("decode pull request %s: %w", g.pr, err)
	}

	raw, err := g.get(ctx, prPath, acceptDiff)
	if err != nil {
		return nil, err
	}
	files, err := ParsePatchFiles(raw)
	if err != nil {
		return nil, fmt.Errorf("pull request %s: %w", g.pr, err)
	}
	log.Debug(log.CatGitHub, "loaded pull request", "pr", g.pr, "files", len(files), "base", pull.Base.SHA, "head", pull.Head.SHA)

	baseRepo := g.repoName(pull.Base)
	headRepo := g.repoName(pull.Head)
	all := make([]string, len(files))
	byPath := make(map[string]PatchFile, len(files))
	for i, f := range files {
		all[i] = f.Path
		byPath[f.Path] = f
	}
	paths := filterPaths(all, g.paths)

	return fetchAll(ctx, paths, func(ctx context.Context, path string) (diffview.FileDiff, error) {
		f := byPath[path]
		var oldContent, newContent string
		if !f.Added {
			orig := f.Path
			if f.OrigPath != "" {
				orig = f.OrigPath
			}
			oldContent = g.contents(ctx, baseRepo, orig, pull.Base.SHA)
		}
		if !f.Deleted {
			newContent = g.contents(ctx, headRepo, f.Path, pull.Head.SHA)
		}
		return diffview.NewFileDiff(path, binaryPlaceholder(oldContent), binaryPlaceholder(newContent)), nil
	})
}

// repoName falls back to the base repository when the head fork is gone.
func (g *GitHub) repoName(ref prRef) string {
	if ref.Repo != nil && ref.Repo.FullName != "" {
		return ref.Repo.FullName
	}
	return g.pr.Owner + "/" + g.pr.Repo
}

// contents returns the file text at ref, or "" when it cannot be fetched.
func (g *GitHub) contents(ctx context.Context, repo, path, ref string) string {
	p := fmt.Sprintf("/repos/%s/contents/%s?ref=%s", repo, escapePath(path), url.QueryEscape(ref))
	body, err := g.get(ctx, p, acceptRaw)
	if err != nil {
		log.Warn(log.CatGitHub, "fetch contents failed", "repo", repo, "path", path, "ref", ref, "error", err)
		return ""
	}
	return string(body)
}

func escapePath(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// StatusError is a non-2xx API response.
type StatusError struct {
	Code int
	URL  string
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github api %s: status %d: %s", e.URL, e.Code, e.Body)
}

func (g *GitHub) get(ctx context.Context, path, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github api %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("github api %s: read body: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, URL: path, Body: errorBody(body)}
	}
	return body, nil
}

// errorBody trims an API error payload to at most maxErrorBody columns
// without splitting a rune.
func errorBody(body []byte) string {
	return runewidth.Truncate(strings.TrimSpace(string(body)), maxErrorBody, "")
}
