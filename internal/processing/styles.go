package processing

const DEFAULT_VIDEO_STYLE = "informative"

type VideoStyle struct {
	Description string
	Instruction string
}

var VideoStyles = map[string]VideoStyle{
	"informative": {
		Description: "Objective, factual style suitable for a news channel",
		Instruction: "Create an objective, informative video script suitable for a news channel",
	},
	"entertaining": {
		Description: "Engaging, casual style with some humor",
		Instruction: "Create an engaging, entertaining script with a casual tone and some humor",
	},
	"educational": {
		Description: "Thorough explanations of concepts",
		Instruction: "Create an educational script that explains concepts thoroughly",
	},
	"dramatic": {
		Description: "Narrative tension and engagement",
		Instruction: "Create a dramatic script with narrative tension and engagement",
	},
}

// StyleDescriptions maps every style name to its short description.
func StyleDescriptions() map[string]string {
	out := make(map[string]string, len(VideoStyles))
	for name, style := range VideoStyles {
		out[name] = style.Description
	}
	return out
}

// StyleInstruction falls back to the informative style for unknown names.
func StyleInstruction(style string) string {
	if s, ok := VideoStyles[style]; ok {
		return s.Instruction
	}
	return VideoStyles[DEFAULT_VIDEO_STYLE].Instruction
}
