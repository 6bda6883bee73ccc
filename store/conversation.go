package store

// TitleSource indicates how the conversation title was created.
// - "default": system default ("New Chat" or truncated first message)
// - "auto": AI-generated title based on conversation content
// - "user": user-provided title (manual edit)
type TitleSource string

const (
	TitleSourceDefault TitleSource = "default"
	TitleSourceAuto    TitleSource = "auto"
	TitleSourceUser    TitleSource = "user"
)

type Conversation struct {
	UID          string
	Title        string
	TitleSource  TitleSource
	RowStatus    RowStatus
	CreatedTs    int64
	UpdatedTs    int64
	ID           int32
	MessageCount int32 // populated by ListConversations with a JOIN
}

type FindConversation struct {
	ID        *int32
	UID       *string
	RowStatus *RowStatus
}

type UpdateConversation struct {
	Title       *string
	TitleSource *TitleSource
	RowStatus   *RowStatus
	UpdatedTs   *int64
	ID          int32
}

type DeleteConversation struct {
	ID int32
}
