package normalize

import (
	"regexp"
	"strings"
)

// techAliases folds spelling variants onto one canonical display name.
var techAliases = map[string]string{
	"golang":       "Go",
	"go":           "Go",
	"node":         "Node.js",
	"nodejs":       "Node.js",
	"node.js":      "Node.js",
	"react.js":     "React",
	"reactjs":      "React",
	"react":        "React",
	"nextjs":       "Next.js",
	"next.js":      "Next.js",
	"ts":           "TypeScript",
	"typescript":   "TypeScript",
	"js":           "JavaScript",
	"javascript":   "JavaScript",
	"py":           "Python",
	"python":       "Python",
	"postgres":     "PostgreSQL",
	"postgresql":   "PostgreSQL",
	"k8s":          "Kubernetes",
	"kubernetes":   "Kubernetes",
	"aws":          "AWS",
	"gcp":          "GCP",
	"c#":           "C#",
	".net":         ".NET",
	"dotnet":       ".NET",
	"c++":          "C++",
	"objective-c":  "Objective-C",
	"react native": "React Native",
}

// techPatterns is the keyword dictionary used to extract technologies from
// posting text. Word-boundary matches only; patterns are matched against the
// lowercased title + description.
var techPatterns = []struct {
	re   *regexp.Regexp
	name string
}{
	{regexp.MustCompile(`\btypescript\b`), "TypeScript"},
	{regexp.MustCompile(`\bjavascript\b`), "JavaScript"},
	{regexp.MustCompile(`\bpython\b`), "Python"},
	{regexp.MustCompile(`\bjava\b`), "Java"},
	{regexp.MustCompile(`\bkotlin\b`), "Kotlin"},
	{regexp.MustCompile(`\bscala\b`), "Scala"},
	{regexp.MustCompile(`\bgo(?:lang)?\b`), "Go"},
	{regexp.MustCompile(`\brust\b`), "Rust"},
	{regexp.MustCompile(`c\+\+`), "C++"},
	{regexp.MustCompile(`\bc#|\.net\b`), ".NET"},
	{regexp.MustCompile(`\bphp\b`), "PHP"},
	{regexp.MustCompile(`\bruby\b|\brails\b`), "Ruby"},
	{regexp.MustCompile(`\bdjango\b`), "Django"},
	{regexp.MustCompile(`\bspring\b`), "Spring"},
	{regexp.MustCompile(`\bswift\b`), "Swift"},
	{regexp.MustCompile(`\breact\s+native\b`), "React Native"},
	{regexp.MustCompile(`\breact(?:\.?js)?\b`), "React"},
	{regexp.MustCompile(`\bnext\.?js\b`), "Next.js"},
	{regexp.MustCompile(`\bangular\b`), "Angular"},
	{regexp.MustCompile(`\bvue\b`), "Vue"},
	{regexp.MustCompile(`\bsvelte\b`), "Svelte"},
	{regexp.MustCompile(`\bflutter\b`), "Flutter"},
	{regexp.MustCompile(`\bnode\.?js?\b`), "Node.js"},
	{regexp.MustCompile(`\bgraphql\b`), "GraphQL"},
	{regexp.MustCompile(`\bpostgres(?:ql)?\b`), "PostgreSQL"},
	{regexp.MustCompile(`\bmysql\b`), "MySQL"},
	{regexp.MustCompile(`\bmongodb\b`), "MongoDB"},
	{regexp.MustCompile(`\bredis\b`), "Redis"},
	{regexp.MustCompile(`\bkafka\b`), "Kafka"},
	{regexp.MustCompile(`\belasticsearch\b`), "Elasticsearch"},
	{regexp.MustCompile(`\bdocker\b`), "Docker"},
	{regexp.MustCompile(`\bkubernetes\b|\bk8s\b`), "Kubernetes"},
	{regexp.MustCompile(`\bterraform\b`), "Terraform"},
	{regexp.MustCompile(`\baws\b|\bamazon\s+web\s+services\b`), "AWS"},
	{regexp.MustCompile(`\bgcp\b|\bgoogle\s+cloud\b`), "GCP"},
	{regexp.MustCompile(`\bazure\b`), "Azure"},
	{regexp.MustCompile(`\blinux\b`), "Linux"},
	{regexp.MustCompile(`\bsql\b`), "SQL"},
}

// ExtractTechnologies scans title + description for known technology keywords
// and returns canonical display names, deduplicated, in dictionary order.
func ExtractTechnologies(title, description string) []string {
	text := strings.ToLower(title + " " + description)
	var out []string
	seen := make(map[string]bool)
	for _, p := range techPatterns {
		if !p.re.MatchString(text) {
			continue
		}
		if seen[p.name] {
			continue
		}
		seen[p.name] = true
		out = append(out, p.name)
	}
	return out
}

// CanonicalizeTech folds a raw technology label onto its canonical display
// name, deduplicating case and alias variants.
func CanonicalizeTech(raw []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		name := t
		if alias, ok := techAliases[strings.ToLower(t)]; ok {
			name = alias
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}
