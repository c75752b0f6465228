package completion

var zshTemplate = `#compdef zhi

# Zsh completion for zhi
# Install: source <(zhi completion zsh)
# Or: zhi completion zsh > "${fpath[1]}/_zhi"

_zhi() {
    local -a commands
    commands=(
        'mcp:Serve the zhi tool over MCP stdio'
        'ui:Show popups from MCP servers in this terminal'
        'popup:Show a single popup from a request file'
        'history:List recorded interactions'
        'completion:Print a shell completion script'
    )

    _arguments -C \
        '--config[Config file]:file:_files' \
        '--color[Control color output]:color:({{.ColorValues}})' \
        '--log-level[Log level]:level:({{.LogLevelValues}})' \
        '--version[Show version information]' \
        '--help[Show help information]' \
        '1:command:->command' \
        '*::arg:->args'

    case $state in
        command)
            _describe -t commands 'zhi command' commands
            ;;
        args)
            case $words[1] in
                popup)
                    _arguments '--request[Popup request file]:file:_files'
                    ;;
                history)
                    _arguments '--limit[Number of entries]:limit:' '--client[Only this client]:client:'
                    ;;
                completion)
                    _arguments '1:shell:({{.Shells}})'
                    ;;
            esac
            ;;
    esac
}

# Register completion function (works when sourced directly)
if [[ -n ${_comps+1} ]]; then
    compdef _zhi zhi
fi
`
