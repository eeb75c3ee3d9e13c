package dashboard

// helpContent is the tmux quick reference shown by the help screen.
const helpContent = `tmux Quick Reference

Setup
  tmux                       Start a new unnamed session
  tmux new -s name           Start a new named session
  tmux ls                    List all sessions
  tmux a                     Attach to the last session
  tmux a -t name             Attach to a specific session
  tmux kill-session -t name  Kill a session
  tmux kill-server           Kill tmux server and all sessions

Sessions (prefix = Ctrl+b)
  $    Rename current session
  d    Detach from current session
  s    Interactive session list
  (    Switch to previous session
  )    Switch to next session
  L    Switch to last (most recently used) session

Windows (prefix = Ctrl+b)
  c    Create a new window
  ,    Rename current window
  &    Kill current window
  n    Next window
  p    Previous window
  0-9  Jump to window by number
  w    Interactive window list

Panes (prefix = Ctrl+b)
  %    Split vertically
  "    Split horizontally
  o    Cycle through panes
  x    Kill current pane
  z    Toggle pane zoom
  {    Move pane left
  }    Move pane right
  q    Show pane numbers

Copy mode (prefix = Ctrl+b)
  [        Enter copy mode
  Space    Start selection
  Enter    Copy selection and exit
  ]        Paste`
