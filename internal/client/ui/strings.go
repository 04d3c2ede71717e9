package ui

import "github.com/vova4o/gonotes/internal/client/models"

// text строка интерфейса на двух языках
type text struct {
	en string
	ja string
}

func (t text) in(lang models.Language) string {
	if lang == models.LanguageJapanese {
		return t.ja
	}
	return t.en
}

var (
	txtAppName        = text{"Notes App", "ノートアプリ"}
	txtWelcomeBack    = text{"Welcome Back", "お帰りなさい"}
	txtLoginRequired  = text{"Login to continue", "続けるにはログインしてください"}
	txtUsername       = text{"Username", "ユーザー名"}
	txtPassword       = text{"Password", "パスワード"}
	txtConfirmPass    = text{"Confirm Password", "パスワード確認"}
	txtPasswordsDiff  = text{"Passwords don't match", "パスワードが一致しません"}
	txtLoggingIn      = text{"Logging in...", "ログイン中..."}
	txtRegistering    = text{"Registering...", "登録中..."}
	txtLoginFailed    = text{"Login failed. Please try again.", "ログインに失敗しました。もう一度お試しください。"}
	txtRegisterFailed = text{"Registration failed. Please try again.", "登録に失敗しました。もう一度お試しください。"}
	txtLoggedOut      = text{"Logged out", "ログアウトしました"}

	txtMyNotes       = text{"My Notes", "マイノート"}
	txtNoNotes       = text{"No notes yet", "まだノートがありません"}
	txtCreateFirst   = text{"Create your first note!", "最初のノートを作成しましょう！"}
	txtLoadingNotes  = text{"Loading notes...", "ノート読込中..."}
	txtGridView      = text{"Grid View", "グリッド表示"}
	txtListView      = text{"List View", "リスト表示"}
	txtDeleteConfirm = text{"Delete this note? (y/N)", "このノートを削除しますか？ (y/N)"}
	txtDeleteMessage = text{"This action cannot be undone.", "この操作は取り消せません。"}
	txtNoteSaved     = text{"Note saved", "ノートを保存しました"}
	txtNoteDeleted   = text{"Note deleted", "ノートを削除しました"}
	txtSavedLocally  = text{"Saved locally, server did not accept the change", "ローカルに保存しました（サーバーに反映されていません）"}
	txtNotFound      = text{"Note not found", "ノートが見つかりません"}
	txtPinned        = text{"Pinned", "ピン留め済み"}
	txtUnpinned      = text{"Unpinned", "ピン解除済み"}
	txtSearch        = text{"Search", "検索"}

	txtTitle      = text{"Title", "タイトル"}
	txtContent    = text{"Content", "内容"}
	txtColor      = text{"Choose Color", "色を選択"}
	txtFillTitle  = text{"Please enter a title", "タイトルを入力してください"}
	txtKeepHint   = text{"empty keeps the current value", "空欄で現在の値を維持"}
	txtUpdated    = text{"Updated", "更新"}
	txtLanguage   = text{"Language", "言語"}
	txtError      = text{"An error occurred", "エラーが発生しました"}
	txtUnknownCmd = text{"Unknown command, type help", "不明なコマンドです。help と入力してください"}
	txtUsage      = text{"Usage", "使い方"}
	txtNotLogged  = text{"Not logged in", "ログインしていません"}
	txtTokenUntil = text{"Token valid until", "トークン有効期限"}
	txtJustNow    = text{"Just now", "たった今"}
	txtBye        = text{"Bye", "さようなら"}
)

var colorNames = map[models.NoteColor]text{
	models.ColorDefault: {"Default", "デフォルト"},
	models.ColorRed:     {"Red", "赤"},
	models.ColorOrange:  {"Orange", "オレンジ"},
	models.ColorYellow:  {"Yellow", "黄色"},
	models.ColorGreen:   {"Green", "緑"},
	models.ColorTeal:    {"Teal", "ティール"},
	models.ColorBlue:    {"Blue", "青"},
	models.ColorPurple:  {"Purple", "紫"},
	models.ColorPink:    {"Pink", "ピンク"},
	models.ColorBrown:   {"Brown", "茶色"},
	models.ColorGray:    {"Gray", "グレー"},
}

var helpLines = []text{
	{"register              create an account", "register              アカウント作成"},
	{"login                 sign in", "login                 ログイン"},
	{"logout                sign out and clear notes", "logout                ログアウト"},
	{"refresh               reload notes from the server", "refresh               サーバーから再読込"},
	{"list                  show notes", "list                  ノート一覧"},
	{"search [text]         filter notes, empty clears", "search [text]         検索（空欄で解除）"},
	{"show <id>             show a note", "show <id>             ノートを表示"},
	{"add                   create a note", "add                   ノート追加"},
	{"edit <id>             edit a note", "edit <id>             ノート編集"},
	{"delete <id>           delete a note", "delete <id>           ノート削除"},
	{"pin <id>              pin or unpin a note", "pin <id>              ピン留め切替"},
	{"view [grid|list]      switch layout", "view [grid|list]      表示切替"},
	{"lang en|ja            switch language", "lang en|ja            言語切替"},
	{"dismiss               hide the error banner", "dismiss               エラー表示を消す"},
	{"whoami                show the current user", "whoami                現在のユーザー"},
	{"quit                  exit", "quit                  終了"},
}
