package docker

// entrypointScript is embedded at build time as a constant string; the
// container assembles it at runtime from environment variables so the
// image itself stays agnostic of any pipeline-specific content. It writes
// the netrc content so git operations can authenticate without exposing
// the token to `ps`, then execs the step's commands.
const entrypointScript = `
if [ -n "$NETRC_CONTENT" ]; then
  echo "$NETRC_CONTENT" > "$HOME/.netrc"
  chmod 600 "$HOME/.netrc"
fi
set -x -e
exec /bin/sh -c "$COMMANDS"
`
