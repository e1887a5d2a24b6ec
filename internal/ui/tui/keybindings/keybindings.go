package keybindings

import tea "github.com/charmbracelet/bubbletea"

// Action represents a specific action that can be triggered by a key
type Action string

const (
	// Global actions
	ActionQuit       Action = "quit"
	ActionToggleHelp Action = "toggle_help"
	ActionBack       Action = "back"

	// Navigation actions
	ActionMoveUp     Action = "move_up"
	ActionMoveDown   Action = "move_down"
	ActionPageUp     Action = "page_up"
	ActionPageDown   Action = "page_down"
	ActionMoveTop    Action = "move_top"
	ActionMoveBottom Action = "move_bottom"

	// Search view actions
	ActionSubmitSearch Action = "submit_search"

	// Results view actions
	ActionSelectShow Action = "select_show"
	ActionNewSearch  Action = "new_search"

	// Episode select actions
	ActionPlayEpisode     Action = "play_episode"
	ActionJumpToEpisode   Action = "jump_to_episode"
	ActionPlayNextUnseen  Action = "play_next_unseen"
	ActionRefreshProgress Action = "refresh_progress"
)

// ContextName represents a specific UI context in the application that has its own keybinds
type ContextName string

const (
	ContextGlobal        ContextName = "global"
	ContextSearch        ContextName = "search"
	ContextResults       ContextName = "results"
	ContextEpisodeSelect ContextName = "episode_select"
	ContextHelp          ContextName = "help"
)

var ContextBindings = map[ContextName][]Binding{
	ContextGlobal:        globalBindings,
	ContextSearch:        searchBindings,
	ContextResults:       resultsBindings,
	ContextEpisodeSelect: episodeSelectBindings,
	ContextHelp:          helpBindings,
}

// KeyMap stores the mappings from actions to key sequences for each context
type KeyMap struct {
	Primary   string
	Secondary string // Optional alternative key
	Help      string // Description for help screen
}

// Binding maps an action to its keys and help text
type Binding struct {
	Action Action
	KeyMap KeyMap
}

// navigationBindings contains general navigation bindings shared by list views
var navigationBindings = []Binding{
	{
		Action: ActionMoveUp,
		KeyMap: KeyMap{
			Primary:   "up",
			Secondary: "k",
			Help:      "Move cursor up",
		},
	},
	{
		Action: ActionMoveDown,
		KeyMap: KeyMap{
			Primary:   "down",
			Secondary: "j",
			Help:      "Move cursor down",
		},
	},
	{
		Action: ActionPageUp,
		KeyMap: KeyMap{
			Primary: "pgup",
			Help:    "Move up one page",
		},
	},
	{
		Action: ActionPageDown,
		KeyMap: KeyMap{
			Primary: "pgdown",
			Help:    "Move down one page",
		},
	},
	{
		Action: ActionMoveTop,
		KeyMap: KeyMap{
			Primary: "home",
			Help:    "Move to top",
		},
	},
	{
		Action: ActionMoveBottom,
		KeyMap: KeyMap{
			Primary: "end",
			Help:    "Move to bottom",
		},
	},
}

// globalBindings contains key bindings that work across all views
var globalBindings = []Binding{
	{
		Action: ActionQuit,
		KeyMap: KeyMap{
			Primary: "ctrl+c",
			Help:    "Quit application",
		},
	},
	{
		Action: ActionToggleHelp,
		KeyMap: KeyMap{
			Primary: "ctrl+h",
			Help:    "Toggle help screen",
		},
	},
	{
		Action: ActionBack,
		KeyMap: KeyMap{
			Primary: "esc",
			Help:    "Go back/cancel current action",
		},
	},
}

// searchBindings contains key bindings for the search view
var searchBindings = []Binding{
	{
		Action: ActionSubmitSearch,
		KeyMap: KeyMap{
			Primary: "enter",
			Help:    "Search for the entered title",
		},
	},
}

// resultsBindings contains key bindings for the search results view
var resultsBindings = withNavigation([]Binding{
	{
		Action: ActionSelectShow,
		KeyMap: KeyMap{
			Primary: "enter",
			Help:    "Select show",
		},
	},
	{
		Action: ActionNewSearch,
		KeyMap: KeyMap{
			Primary:   "/",
			Secondary: "ctrl+f",
			Help:      "New search",
		},
	},
})

// episodeSelectBindings contains key bindings for the episode selection view
var episodeSelectBindings = withNavigation([]Binding{
	{
		Action: ActionPlayEpisode,
		KeyMap: KeyMap{
			Primary: "enter",
			Help:    "Play highlighted episode",
		},
	},
	{
		Action: ActionPlayNextUnseen,
		KeyMap: KeyMap{
			Primary: "n",
			Help:    "Play next unwatched episode",
		},
	},
	{
		Action: ActionJumpToEpisode,
		KeyMap: KeyMap{
			Primary:   "/",
			Secondary: "ctrl+f",
			Help:      "Jump to episode number",
		},
	},
	{
		Action: ActionRefreshProgress,
		KeyMap: KeyMap{
			Primary: "r",
			Help:    "Refresh watch progress",
		},
	},
})

// helpBindings contains key bindings specific to the help view
var helpBindings = withNavigation([]Binding{})

// GetActionKey returns the primary key for an action
func GetActionKey(action Action, bindings []Binding) string {
	for _, binding := range bindings {
		if binding.Action == action {
			return binding.KeyMap.Primary
		}
	}
	return ""
}

// GetActionByKey returns the action for a given key, or an empty Action if not found
func GetActionByKey(keyMsg tea.KeyMsg, name ContextName) Action {
	if bindings, exists := ContextBindings[name]; exists {
		key := keyMsg.String()
		for _, binding := range bindings {
			if binding.KeyMap.Primary == key || binding.KeyMap.Secondary == key {
				return binding.Action
			}
		}
	}
	return ""
}

// FormatKeyHelp formats a key binding for display in help text
func FormatKeyHelp(binding Binding) string {
	if binding.KeyMap.Secondary != "" {
		return binding.KeyMap.Primary + "/" + binding.KeyMap.Secondary + ": " + binding.KeyMap.Help
	}
	return binding.KeyMap.Primary + ": " + binding.KeyMap.Help
}

// GetHelpText generates formatted help text for a set of bindings
func GetHelpText(title string, bindings []Binding) string {
	helpText := "## " + title + "\n\n"
	for _, binding := range bindings {
		helpText += "* " + FormatKeyHelp(binding) + "\n"
	}
	return helpText
}

// withNavigation is a helper function to include navigation bindings in other binding sets
func withNavigation(bindings []Binding) []Binding {
	return append(append([]Binding{}, navigationBindings...), bindings...)
}
