package completion

var bashTemplate = `# Bash completion for zhi
# Install: source <(zhi completion bash)
# Or: zhi completion bash > /etc/bash_completion.d/zhi

_zhi_completions() {
    local cur prev words cword
    _init_completion || return

    local global_flags="--config --color --log-level --version --help"

    case "${prev}" in
        --color)
            COMPREPLY=($(compgen -W "{{.ColorValues}}" -- "${cur}"))
            return 0
            ;;
        --log-level)
            COMPREPLY=($(compgen -W "{{.LogLevelValues}}" -- "${cur}"))
            return 0
            ;;
        --config|--request)
            _filedir
            return 0
            ;;
        --limit|--client)
            return 0
            ;;
    esac

    # Find the subcommand, skipping global flags and their values
    local command=""
    for ((i=1; i < cword; i++)); do
        case "${words[i]}" in
            --config|--color|--log-level)
                ((i++))
                ;;
            -*)
                ;;
            *)
                command="${words[i]}"
                break
                ;;
        esac
    done

    case "${command}" in
        "")
            if [[ "${cur}" == -* ]]; then
                COMPREPLY=($(compgen -W "${global_flags}" -- "${cur}"))
            else
                COMPREPLY=($(compgen -W "{{.Commands}}" -- "${cur}"))
            fi
            ;;
        popup)
            COMPREPLY=($(compgen -W "--request" -- "${cur}"))
            ;;
        history)
            COMPREPLY=($(compgen -W "--limit --client" -- "${cur}"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "{{.Shells}}" -- "${cur}"))
            ;;
    esac
}

complete -F _zhi_completions zhi
`
