package types

// DefaultCRS is the spatial reference used when nothing else is configured:
// WGS 84 / UTM zone 35N.
const DefaultCRS = "EPSG:32635"

// DefaultNamingTags are the site tags offered when the config file does not
// list any. The first entry is the default selection.
var DefaultNamingTags = []string{"86_540", "97_541"}

// ConversionConfig holds settings for the conversion pipeline.
type ConversionConfig struct {
	// CRS is the EPSG identifier attached to every output geometry
	// (e.g. "EPSG:32635").
	CRS string `json:"crs" yaml:"crs"`

	// NamingTags is the fixed list of shapefile name tags the operator can
	// choose from. The first entry is the default.
	NamingTags []string `json:"naming_tags" yaml:"naming_tags"`

	// OutputDir is where archives with a default name are written.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// WorkDir is the parent of the per-run scratch directory. Empty means
	// the OS temp directory.
	WorkDir string `json:"work_dir,omitempty" yaml:"work_dir,omitempty"`
}

// DefaultTag returns the first configured naming tag, or "" when none are
// configured.
func (c ConversionConfig) DefaultTag() string {
	if len(c.NamingTags) == 0 {
		return ""
	}
	return c.NamingTags[0]
}

// HasTag reports whether tag is one of the configured naming tags.
func (c ConversionConfig) HasTag(tag string) bool {
	for _, t := range c.NamingTags {
		if t == tag {
			return true
		}
	}
	return false
}

// LogConfig holds settings for diagnostic logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is text or json.
	Format string `json:"format" yaml:"format"`
}

// ServeConfig holds settings for the web form.
type ServeConfig struct {
	// Addr is the listen address (e.g. ":9595").
	Addr string `json:"addr" yaml:"addr"`

	// DataDir holds uploaded sources and produced archives.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// AccountsFile is an optional file of user:password lines. When set,
	// every route except /healthz requires HTTP basic auth.
	AccountsFile string `json:"accounts_file,omitempty" yaml:"accounts_file,omitempty"`

	// MaxUploadMB caps the size of an uploaded source table.
	MaxUploadMB int `json:"max_upload_mb" yaml:"max_upload_mb"`

	// MaxArchives is how many produced archives stay downloadable; older
	// ones are deleted.
	MaxArchives int `json:"max_archives" yaml:"max_archives"`
}

// Config groups all settings read from the config file and environment.
type Config struct {
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
	Log        LogConfig        `json:"log" yaml:"log"`
	Serve      ServeConfig      `json:"serve" yaml:"serve"`
}
