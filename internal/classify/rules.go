package classify

// builtinRules is the static classification table. Order matters: when
// several matches share the maximum severity, the earliest rule supplies
// the finding's primary category and reason. Keep the most specific rules
// first within each block.
var builtinRules = []*Rule{
	// Version control metadata
	{Name: "git-head", Category: CategoryVCS, Severity: SeverityCritical, Description: "exposed .git HEAD", Suffix: ".git/head", NeedsBody: true},
	{Name: "git-config", Category: CategoryVCS, Severity: SeverityCritical, Description: "exposed .git config", Suffix: ".git/config", NeedsBody: true},
	{Name: "git-index", Category: CategoryVCS, Severity: SeverityCritical, Description: "exposed .git index", Suffix: ".git/index"},
	{Name: "git-credentials", Category: CategorySecrets, Severity: SeverityCritical, Description: "git stored credentials", Suffix: ".git-credentials", NeedsBody: true},
	{Name: "git-dir", Category: CategoryVCS, Severity: SeverityCritical, Description: ".git directory", Segment: ".git"},
	{Name: "svn-meta", Category: CategoryVCS, Severity: SeverityHigh, Description: "Subversion metadata", Segment: ".svn", NeedsBody: true},
	{Name: "hg-meta", Category: CategoryVCS, Severity: SeverityHigh, Description: "Mercurial metadata", Segment: ".hg"},

	// Secrets and credentials
	{Name: "env-file", Category: CategorySecrets, Severity: SeverityCritical, Description: "environment file", SegmentPrefix: ".env", NeedsBody: true},
	{Name: "ssh-key", Category: CategorySecrets, Severity: SeverityCritical, Description: "SSH private key", SegmentPrefix: "id_rsa", NeedsBody: true},
	{Name: "ssh-dir", Category: CategorySecrets, Severity: SeverityCritical, Description: ".ssh directory contents", Segment: ".ssh", NeedsBody: true},
	{Name: "pem-key", Category: CategorySecrets, Severity: SeverityHigh, Description: "PEM key material", Suffix: ".pem", NeedsBody: true},
	{Name: "htpasswd", Category: CategorySecrets, Severity: SeverityHigh, Description: ".htpasswd credentials", Suffix: ".htpasswd", NeedsBody: true},
	{Name: "query-credential", Category: CategorySecrets, Severity: SeverityMedium, Description: "credential in query string", Query: "password="},

	// Application configuration
	{Name: "wp-config", Category: CategoryConfig, Severity: SeverityCritical, Description: "WordPress configuration", Contains: "wp-config.php", NeedsBody: true},
	{Name: "django-settings", Category: CategoryConfig, Severity: SeverityHigh, Description: "Django settings module", Suffix: "settings.py", NeedsBody: true},
	{Name: "htaccess", Category: CategoryConfig, Severity: SeverityMedium, Description: ".htaccess rules", Suffix: ".htaccess", NeedsBody: true},
	{Name: "config-ini", Category: CategoryConfig, Severity: SeverityMedium, Description: "INI configuration file", Suffix: ".ini", NeedsBody: true},

	// Database dumps
	{Name: "sql-dump-gz", Category: CategoryDumps, Severity: SeverityCritical, Description: "compressed SQL dump", Suffix: ".sql.gz"},
	{Name: "sql-dump", Category: CategoryDumps, Severity: SeverityCritical, Description: "SQL dump", Suffix: ".sql", NeedsBody: true},
	{Name: "sqlite-db", Category: CategoryDumps, Severity: SeverityCritical, Description: "SQLite database", Suffix: ".sqlite", NeedsBody: true},
	{Name: "sqlite3-db", Category: CategoryDumps, Severity: SeverityCritical, Description: "SQLite database", Suffix: ".sqlite3", NeedsBody: true},
	{Name: "db-file", Category: CategoryDumps, Severity: SeverityHigh, Description: "database file", Suffix: ".db", NeedsBody: true},
	{Name: "mdb-file", Category: CategoryDumps, Severity: SeverityHigh, Description: "Access database", Suffix: ".mdb"},

	// Logs and temp files
	{Name: "log-file", Category: CategoryLogs, Severity: SeverityMedium, Description: "log file", Suffix: ".log", NeedsBody: true},
	{Name: "tilde-backup", Category: CategoryTemp, Severity: SeverityMedium, Description: "editor tilde backup", Suffix: "~"},
	{Name: "bak-file", Category: CategoryTemp, Severity: SeverityMedium, Description: "backup copy", Suffix: ".bak"},
	{Name: "old-file", Category: CategoryTemp, Severity: SeverityMedium, Description: "old copy", Suffix: ".old"},
	{Name: "orig-file", Category: CategoryTemp, Severity: SeverityMedium, Description: "original copy", Suffix: ".orig"},
	{Name: "swap-file", Category: CategoryTemp, Severity: SeverityMedium, Description: "editor swap file", Suffix: ".swp"},
	{Name: "ds-store", Category: CategoryTemp, Severity: SeverityLow, Description: "macOS .DS_Store", Suffix: ".ds_store"},
	{Name: "thumbs-db", Category: CategoryTemp, Severity: SeverityLow, Description: "Windows Thumbs.db", Suffix: "thumbs.db"},
	{Name: "ide-config", Category: CategoryTemp, Severity: SeverityLow, Description: "IDE project metadata", Segment: ".idea"},
	{Name: "vscode-config", Category: CategoryTemp, Severity: SeverityLow, Description: "IDE project metadata", Segment: ".vscode"},

	// Archives
	{Name: "tar-gz-archive", Category: CategoryArchives, Severity: SeverityHigh, Description: "tarball archive", Suffix: ".tar.gz"},
	{Name: "tgz-archive", Category: CategoryArchives, Severity: SeverityHigh, Description: "tarball archive", Suffix: ".tgz"},
	{Name: "zip-archive", Category: CategoryArchives, Severity: SeverityHigh, Description: "ZIP archive", Suffix: ".zip"},
	{Name: "7z-archive", Category: CategoryArchives, Severity: SeverityHigh, Description: "7-Zip archive", Suffix: ".7z"},
	{Name: "rar-archive", Category: CategoryArchives, Severity: SeverityHigh, Description: "RAR archive", Suffix: ".rar"},
	{Name: "tar-archive", Category: CategoryArchives, Severity: SeverityHigh, Description: "tar archive", Suffix: ".tar"},

	// Directory listings on sensitive directories
	{Name: "backup-dir", Category: CategoryDirectory, Severity: SeverityHigh, Description: "backup directory", Segment: "backup", DirOnly: true, NeedsBody: true},
	{Name: "backups-dir", Category: CategoryDirectory, Severity: SeverityHigh, Description: "backup directory", Segment: "backups", DirOnly: true, NeedsBody: true},
	{Name: "private-dir", Category: CategoryDirectory, Severity: SeverityHigh, Description: "private directory", Segment: "private", DirOnly: true, NeedsBody: true},
	{Name: "logs-dir", Category: CategoryDirectory, Severity: SeverityMedium, Description: "logs directory", Segment: "logs", DirOnly: true, NeedsBody: true},
	{Name: "tmp-dir", Category: CategoryDirectory, Severity: SeverityLow, Description: "tmp directory", Segment: "tmp", DirOnly: true, NeedsBody: true},

	// Debug and introspection endpoints
	{Name: "phpinfo", Category: CategoryDebug, Severity: SeverityHigh, Description: "phpinfo endpoint", Suffix: "phpinfo.php", NeedsBody: true},
	{Name: "info-php", Category: CategoryDebug, Severity: SeverityHigh, Description: "info.php endpoint", Suffix: "/info.php", NeedsBody: true},
	{Name: "actuator", Category: CategoryDebug, Severity: SeverityHigh, Description: "Spring actuator endpoint", Segment: "actuator"},
	{Name: "server-status", Category: CategoryDebug, Severity: SeverityMedium, Description: "Apache server-status", Suffix: "server-status", NeedsBody: true},
	{Name: "debug-endpoint", Category: CategoryDebug, Severity: SeverityMedium, Description: "debug endpoint", Segment: "debug"},

	// Admin panels
	{Name: "phpmyadmin", Category: CategoryAdmin, Severity: SeverityHigh, Description: "phpMyAdmin panel", Segment: "phpmyadmin"},
	{Name: "wp-admin", Category: CategoryAdmin, Severity: SeverityMedium, Description: "WordPress admin", Segment: "wp-admin"},
	{Name: "admin-panel", Category: CategoryAdmin, Severity: SeverityMedium, Description: "admin panel", Segment: "admin"},
	{Name: "administrator-panel", Category: CategoryAdmin, Severity: SeverityMedium, Description: "admin panel", Segment: "administrator"},
}
