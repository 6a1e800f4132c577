package wizard

import (
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/editor"
	"github.com/letrabox/mockup/internal/logger"
)

// TextEditedMsg is sent when the external editor returns with new content.
type TextEditedMsg struct {
	Content string
}

// EditorAvailable reports whether $EDITOR or $VISUAL is set.
func EditorAvailable() bool {
	return os.Getenv("EDITOR") != "" || os.Getenv("VISUAL") != ""
}

// EditText opens content in the user's editor and delivers the saved text
// as a TextEditedMsg. It returns nil when no temp file or editor command can
// be prepared; an editor that exits with an error produces no message.
func EditText(content string) tea.Cmd {
	tmpfile, err := os.CreateTemp("", "mockup_description_*.txt")
	if err != nil {
		logger.Warn("creating editor temp file: %v", err)
		return nil
	}
	if _, err := tmpfile.WriteString(content); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(tmpfile.Name())
		return nil
	}
	_ = tmpfile.Close()
	path := tmpfile.Name()

	cmd, err := editor.Command("mockup", path)
	if err != nil {
		logger.Warn("preparing editor: %v", err)
		_ = os.Remove(path)
		return nil
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		defer func() { _ = os.Remove(path) }()
		if err != nil {
			logger.Warn("editor exited: %v", err)
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		return TextEditedMsg{Content: string(data)}
	})
}
