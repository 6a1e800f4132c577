package wizard

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/letrabox/mockup/internal/imagedata"
	"github.com/letrabox/mockup/internal/tui/theme"
)

// FileItem represents a file or directory in the file picker.
type FileItem struct {
	name  string // Name of file/directory
	path  string // Full path
	isDir bool   // True if directory
}

// ID returns a unique identifier for this item.
func (f *FileItem) ID() string {
	return f.path
}

// Render returns the rendered string representation.
func (f *FileItem) Render(width int) string {
	icon := "🖼"
	if f.isDir {
		icon = "📁"
	}

	display := []rune(icon + " " + f.name)
	if width > 5 && len(display) > width-2 {
		display = append(display[:width-5], []rune("...")...)
	}
	return string(display)
}

// Height returns the number of lines this item occupies.
func (f *FileItem) Height() int {
	return 1
}

// FilePickerStep lets the user browse directories and pick an image file.
type FilePickerStep struct {
	currentPath string      // Current directory path
	items       []*FileItem // All items in current directory
	selectedIdx int         // Index of selected item
	offset      int         // First visible item
	width       int         // Available width
	height      int         // Available height
	loadErr     error
}

// NewFilePickerStepAt creates a file picker rooted at dir.
func NewFilePickerStepAt(dir string) *FilePickerStep {
	fp := &FilePickerStep{
		width:  60,
		height: 10,
	}
	fp.loadErr = fp.loadDirectory(dir)
	return fp
}

// loadDirectory loads directories and image files from the given path.
func (f *FilePickerStep) loadDirectory(path string) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}

	f.items = make([]*FileItem, 0, len(entries)+1)

	absPath, err := filepath.Abs(path)
	if err == nil {
		path = absPath
		if absPath != filepath.Dir(absPath) {
			f.items = append(f.items, &FileItem{
				name:  "..",
				path:  filepath.Dir(absPath),
				isDir: true,
			})
		}
	}

	var dirs []*FileItem
	var files []*FileItem

	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		fullPath := filepath.Join(path, entry.Name())

		if entry.IsDir() {
			dirs = append(dirs, &FileItem{name: entry.Name(), path: fullPath, isDir: true})
		} else if imagedata.HasImageExtension(entry.Name()) {
			files = append(files, &FileItem{name: entry.Name(), path: fullPath})
		}
	}

	sort.Slice(dirs, func(i, j int) bool {
		return strings.ToLower(dirs[i].name) < strings.ToLower(dirs[j].name)
	})
	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(files[i].name) < strings.ToLower(files[j].name)
	})

	// Directories first, then files
	f.items = append(f.items, dirs...)
	f.items = append(f.items, files...)

	f.currentPath = path
	f.selectedIdx = 0
	f.offset = 0
	f.loadErr = nil
	return nil
}

// SetSize updates the dimensions for the file picker.
func (f *FilePickerStep) SetSize(width, height int) {
	f.width = width
	f.height = height
	f.clampOffset()
}

// visibleRows is the number of list rows that fit after the path header and
// hint bar.
func (f *FilePickerStep) visibleRows() int {
	rows := f.height - 4
	if rows < 3 {
		rows = 3
	}
	return rows
}

func (f *FilePickerStep) clampOffset() {
	rows := f.visibleRows()
	if f.selectedIdx < f.offset {
		f.offset = f.selectedIdx
	}
	if f.selectedIdx >= f.offset+rows {
		f.offset = f.selectedIdx - rows + 1
	}
}

// Update handles messages for the file picker step.
func (f *FilePickerStep) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if f.selectedIdx > 0 {
			f.selectedIdx--
		}
	case "down", "j":
		if f.selectedIdx < len(f.items)-1 {
			f.selectedIdx++
		}
	case "home", "g":
		f.selectedIdx = 0
	case "end", "G":
		if len(f.items) > 0 {
			f.selectedIdx = len(f.items) - 1
		}
	case "enter":
		if f.selectedIdx < 0 || f.selectedIdx >= len(f.items) {
			return nil
		}
		item := f.items[f.selectedIdx]
		if item.isDir {
			if err := f.loadDirectory(item.path); err != nil {
				f.loadErr = err
			}
			return nil
		}
		path := item.path
		return func() tea.Msg {
			return FileSelectedMsg{Path: path}
		}
	case "backspace":
		parentPath := filepath.Dir(f.currentPath)
		if parentPath != f.currentPath {
			if err := f.loadDirectory(parentPath); err != nil {
				f.loadErr = err
			}
		}
	}
	f.clampOffset()
	return nil
}

// View renders the file picker step.
func (f *FilePickerStep) View() string {
	s := theme.Current().S()
	var b strings.Builder

	b.WriteString(s.Muted.Render(f.currentPath))
	b.WriteString("\n\n")

	if f.loadErr != nil {
		b.WriteString(s.Error.Render("Cannot read directory: " + f.loadErr.Error()))
		b.WriteString("\n\n")
	}

	hasFiles := false
	for _, item := range f.items {
		if item.name != ".." {
			hasFiles = true
			break
		}
	}

	if !hasFiles {
		b.WriteString(s.Dim.Render("No image files in this directory"))
		b.WriteString("\n")
	}

	end := f.offset + f.visibleRows()
	if end > len(f.items) {
		end = len(f.items)
	}
	for i := f.offset; i < end; i++ {
		line := f.items[i].Render(f.width)
		if i == f.selectedIdx {
			line = s.Selected.Render("▸ " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if len(f.items) == 0 {
		b.WriteString(RenderHintBar("backspace", "go up", "esc", "back"))
	} else {
		b.WriteString(RenderHintBar(
			"↑↓/j/k", "navigate",
			"enter", "select",
			"backspace", "up",
			"esc", "back",
		))
	}

	return b.String()
}

// CurrentPath returns the directory being browsed.
func (f *FilePickerStep) CurrentPath() string {
	return f.currentPath
}

// SelectedPath returns the currently selected file path (empty if directory selected).
func (f *FilePickerStep) SelectedPath() string {
	if f.selectedIdx >= 0 && f.selectedIdx < len(f.items) {
		item := f.items[f.selectedIdx]
		if !item.isDir {
			return item.path
		}
	}
	return ""
}

// FileSelectedMsg is sent when a file is selected.
type FileSelectedMsg struct {
	Path string
}
