package schema

// ItemKind identifies which family of definitions a file or history
// belongs to. Each kind has its own equality allow-list.
type ItemKind string

// Supported item kinds.
const (
	MetricsKind ItemKind = "metrics"
	PingsKind   ItemKind = "pings"
	TagsKind    ItemKind = "tags"
)

// CacheBackend identifies the database backend used by the scrape cache.
type CacheBackend string

// Supported cache backends.
const (
	SQLiteBackend     CacheBackend = "sqlite"
	MySQLBackend      CacheBackend = "mysql"
	PostgreSQLBackend CacheBackend = "postgresql"
	NoneBackend       CacheBackend = "none"
)

// OutputFormat identifies the artifact serialization format.
type OutputFormat string

// Supported output formats.
const (
	JSONOut    OutputFormat = "json"
	ParquetOut OutputFormat = "parquet"
)

// Repository describes one scrape target from repositories.yaml.
type Repository struct {
	Name               string   `yaml:"-"`
	AppID              string   `yaml:"app_id"`
	URL                string   `yaml:"url"`
	Branch             string   `yaml:"branch"`
	NotificationEmails []string `yaml:"notification_emails"`
	MetricsFiles       []string `yaml:"metrics_files"`
	PingsFiles         []string `yaml:"ping_files"`
	TagsFiles          []string `yaml:"tag_files"`
	Dependencies       []string `yaml:"dependencies"`
	LibraryNames       []string `yaml:"library_names"`
	Deprecated         bool     `yaml:"deprecated"`
	Prototype          bool     `yaml:"prototype"`
}

// IsLibrary reports whether the repository publishes itself as a
// dependency library rather than an end-user application.
func (r *Repository) IsLibrary() bool {
	return len(r.LibraryNames) > 0
}

// ChangeFiles returns all definition files tracked for this repository,
// grouped by kind.
func (r *Repository) ChangeFiles() map[ItemKind][]string {
	files := make(map[ItemKind][]string, 3)
	if len(r.MetricsFiles) > 0 {
		files[MetricsKind] = r.MetricsFiles
	}
	if len(r.PingsFiles) > 0 {
		files[PingsKind] = r.PingsFiles
	}
	if len(r.TagsFiles) > 0 {
		files[TagsKind] = r.TagsFiles
	}
	return files
}

// CacheStatus holds status information about the scrape cache store.
type CacheStatus struct {
	Backend   CacheBackend
	Location  string
	Entries   int64
	SizeBytes int64
}
