package completion

var fishTemplate = `# Fish completion for zhi
# Install: zhi completion fish | source
# Or: zhi completion fish > ~/.config/fish/completions/zhi.fish

# Disable file completion by default
complete -c zhi -f

# Global flags
complete -c zhi -l config -r -F -d 'Config file'
complete -c zhi -l color -r -f -a '{{.ColorValues}}' -d 'Control color output'
complete -c zhi -l log-level -r -f -a '{{.LogLevelValues}}' -d 'Log level'
complete -c zhi -l version -d 'Show version information'
complete -c zhi -l help -d 'Show help information'

# Subcommands
complete -c zhi -n '__fish_use_subcommand' -a mcp -d 'Serve the zhi tool over MCP stdio'
complete -c zhi -n '__fish_use_subcommand' -a ui -d 'Show popups from MCP servers in this terminal'
complete -c zhi -n '__fish_use_subcommand' -a popup -d 'Show a single popup from a request file'
complete -c zhi -n '__fish_use_subcommand' -a history -d 'List recorded interactions'
complete -c zhi -n '__fish_use_subcommand' -a completion -d 'Print a shell completion script'

# Subcommand flags
complete -c zhi -n '__fish_seen_subcommand_from popup' -l request -r -F -d 'Popup request file'
complete -c zhi -n '__fish_seen_subcommand_from history' -l limit -r -d 'Number of entries'
complete -c zhi -n '__fish_seen_subcommand_from history' -l client -r -d 'Only this client'
complete -c zhi -n '__fish_seen_subcommand_from completion' -a '{{.Shells}}'
`
