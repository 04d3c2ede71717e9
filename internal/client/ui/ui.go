package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vova4o/gonotes/internal/client/models"
	"github.com/vova4o/gonotes/internal/client/notesync"
	"github.com/vova4o/gonotes/package/logger"
)

// Authenticator интерфейс для входа и регистрации
type Authenticator interface {
	Register(ctx context.Context, user models.RegisterAndLogin) (*models.TokenResponse, error)
	Login(ctx context.Context, user models.RegisterAndLogin) (*models.TokenResponse, error)
	Logout(ctx context.Context) error
	IsLoggedIn(ctx context.Context) bool
	Username(ctx context.Context) string
	TokenExpiry() (time.Time, bool)
}

// Notebook интерфейс коллекции заметок
type Notebook interface {
	LoadIfLoggedIn(ctx context.Context, session notesync.Sessioner) error
	Refresh(ctx context.Context) error
	Add(ctx context.Context, note models.Note) notesync.Result
	Update(ctx context.Context, note models.Note) notesync.Result
	Delete(ctx context.Context, id string) notesync.Result
	TogglePin(ctx context.Context, id string) (notesync.Result, bool)
	FilteredView() []models.Note
	Get(id string) (models.Note, bool)
	SetQuery(query string)
	SetViewMode(mode notesync.ViewMode)
	ToggleViewMode() notesync.ViewMode
	Select(id string)
	ClearError()
	Clear()
	State() notesync.State
}

// Preferences хранит язык интерфейса
type Preferences interface {
	SaveLanguage(ctx context.Context, lang models.Language) error
	Language(ctx context.Context) models.Language
}

// UI структура для терминального интерфейса
type UI struct {
	ctx    context.Context
	auth   Authenticator
	notes  Notebook
	prefs  Preferences
	logger *logger.Logger
	in     *bufio.Scanner
	out    io.Writer
	lang   models.Language
	now    func() time.Time
}

// NewUI создает новый экземпляр UI
func NewUI(ctx context.Context, auth Authenticator, notes Notebook, prefs Preferences, log *logger.Logger, in io.Reader, out io.Writer) *UI {
	return &UI{
		ctx:    ctx,
		auth:   auth,
		notes:  notes,
		prefs:  prefs,
		logger: log,
		in:     bufio.NewScanner(in),
		out:    out,
		lang:   models.LanguageEnglish,
		now:    time.Now,
	}
}

// RunUI запускает цикл чтения команд до quit или конца ввода
func (u *UI) RunUI() error {
	u.lang = u.prefs.Language(u.ctx)
	u.println(txtAppName.in(u.lang))

	if u.auth.IsLoggedIn(u.ctx) {
		u.println(txtWelcomeBack.in(u.lang) + ", " + u.auth.Username(u.ctx))
		u.println(txtLoadingNotes.in(u.lang))
		if err := u.notes.LoadIfLoggedIn(u.ctx, u.auth); err != nil {
			u.logger.Error("Initial load failed: " + err.Error())
		}
		u.list()
	} else {
		u.println(txtLoginRequired.in(u.lang))
	}
	u.banner()

	for {
		fmt.Fprint(u.out, "> ")
		if !u.in.Scan() {
			return u.in.Err()
		}

		if quit := u.Execute(u.in.Text()); quit {
			u.println(txtBye.in(u.lang))
			return nil
		}

		if err := u.ctx.Err(); err != nil {
			return err
		}
	}
}

// Execute runs a single command line. It returns true when the user asked to quit.
func (u *UI) Execute(line string) bool {
	cmd, arg := splitCommand(line)
	if cmd == "" {
		return false
	}

	u.logger.Debug("command: " + cmd)

	switch cmd {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		u.help()
		return false
	case "lang":
		u.setLanguage(arg)
		return false
	case "register":
		u.register()
	case "login":
		u.login()
	case "logout", "whoami", "refresh", "list", "ls", "search", "show", "add", "edit", "delete", "rm", "pin", "view", "dismiss":
		if !u.auth.IsLoggedIn(u.ctx) {
			u.println(txtLoginRequired.in(u.lang))
			return false
		}
		u.sessionCommand(cmd, arg)
	default:
		u.println(txtUnknownCmd.in(u.lang))
		return false
	}

	u.banner()
	return false
}

func (u *UI) sessionCommand(cmd, arg string) {
	switch cmd {
	case "logout":
		u.logout()
	case "whoami":
		u.whoami()
	case "refresh":
		u.println(txtLoadingNotes.in(u.lang))
		if err := u.notes.Refresh(u.ctx); err != nil {
			u.logger.Error("Refresh failed: " + err.Error())
		}
		u.list()
	case "list", "ls":
		u.list()
	case "search":
		u.notes.SetQuery(arg)
		u.list()
	case "show":
		u.show(arg)
	case "add":
		u.add()
	case "edit":
		u.edit(arg)
	case "delete", "rm":
		u.delete(arg)
	case "pin":
		u.pin(arg)
	case "view":
		u.view(arg)
	case "dismiss":
		u.notes.ClearError()
	}
}

func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ""
	}
	cmd, arg, _ := strings.Cut(line, " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}

func (u *UI) help() {
	u.println(txtUsage.in(u.lang) + ":")
	for _, l := range helpLines {
		u.println("  " + l.in(u.lang))
	}
}

func (u *UI) setLanguage(code string) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code != string(models.LanguageEnglish) && code != string(models.LanguageJapanese) {
		u.println(txtUsage.in(u.lang) + ": lang en|ja")
		return
	}

	lang := models.LanguageFromCode(code)
	if err := u.prefs.SaveLanguage(u.ctx, lang); err != nil {
		u.logger.Warning("Failed to save language: " + err.Error())
	}
	u.lang = lang
	u.println(txtLanguage.in(u.lang) + ": " + lang.DisplayName())
}

func (u *UI) credentials(confirm bool) (models.RegisterAndLogin, bool) {
	username, ok := u.prompt(txtUsername.in(u.lang))
	if !ok {
		return models.RegisterAndLogin{}, false
	}
	password, ok := u.prompt(txtPassword.in(u.lang))
	if !ok {
		return models.RegisterAndLogin{}, false
	}

	if confirm {
		again, ok := u.prompt(txtConfirmPass.in(u.lang))
		if !ok {
			return models.RegisterAndLogin{}, false
		}
		if again != password {
			u.println(txtPasswordsDiff.in(u.lang))
			return models.RegisterAndLogin{}, false
		}
	}

	return models.RegisterAndLogin{Username: strings.TrimSpace(username), Password: password}, true
}

func (u *UI) register() {
	user, ok := u.credentials(true)
	if !ok {
		return
	}

	u.println(txtRegistering.in(u.lang))
	if _, err := u.auth.Register(u.ctx, user); err != nil {
		u.logger.Error("Registration failed: " + err.Error())
		u.println(txtRegisterFailed.in(u.lang))
		u.println("  " + err.Error())
		return
	}

	u.afterLogin()
}

func (u *UI) login() {
	user, ok := u.credentials(false)
	if !ok {
		return
	}

	u.println(txtLoggingIn.in(u.lang))
	if _, err := u.auth.Login(u.ctx, user); err != nil {
		u.logger.Error("Login failed: " + err.Error())
		u.println(txtLoginFailed.in(u.lang))
		u.println("  " + err.Error())
		return
	}

	u.afterLogin()
}

func (u *UI) afterLogin() {
	// данные прошлой сессии не должны попасть в новую
	u.notes.Clear()
	u.println(txtWelcomeBack.in(u.lang) + ", " + u.auth.Username(u.ctx))
	u.println(txtLoadingNotes.in(u.lang))
	if err := u.notes.Refresh(u.ctx); err != nil {
		u.logger.Error("Refresh after login failed: " + err.Error())
	}
	u.list()
}

func (u *UI) logout() {
	if err := u.auth.Logout(u.ctx); err != nil {
		u.logger.Error("Failed to clear token: " + err.Error())
	}
	u.notes.Clear()
	u.println(txtLoggedOut.in(u.lang))
}

func (u *UI) whoami() {
	username := u.auth.Username(u.ctx)
	if username == "" {
		u.println(txtNotLogged.in(u.lang))
		return
	}
	u.println(txtUsername.in(u.lang) + ": " + username)
	if exp, ok := u.auth.TokenExpiry(); ok {
		u.println(txtTokenUntil.in(u.lang) + ": " + exp.Local().Format(time.DateTime))
	}
}

func (u *UI) list() {
	state := u.notes.State()
	notes := u.notes.FilteredView()

	header := txtMyNotes.in(u.lang)
	if strings.TrimSpace(state.Query) != "" {
		header += fmt.Sprintf(" (%s: %q)", txtSearch.in(u.lang), state.Query)
	}
	u.println(header)

	if len(notes) == 0 {
		u.println(txtNoNotes.in(u.lang))
		if strings.TrimSpace(state.Query) == "" {
			u.println(txtCreateFirst.in(u.lang))
		}
		return
	}

	var err error
	if state.ViewMode == notesync.ViewList {
		err = renderList(u.out, notes, u.now(), u.lang)
	} else {
		err = renderGrid(u.out, notes, u.now(), u.lang)
	}
	if err != nil {
		u.logger.Error("Failed to render notes: " + err.Error())
	}
}

func (u *UI) show(id string) {
	note, ok := u.lookup(id)
	if !ok {
		return
	}
	u.notes.Select(note.ID.String())
	renderNote(u.out, note, u.now(), u.lang)
}

func (u *UI) add() {
	title, ok := u.prompt(txtTitle.in(u.lang))
	if !ok {
		return
	}
	if strings.TrimSpace(title) == "" {
		u.println(txtFillTitle.in(u.lang))
		return
	}

	content, ok := u.prompt(txtContent.in(u.lang))
	if !ok {
		return
	}

	color, ok := u.promptColor(models.ColorDefault)
	if !ok {
		return
	}

	note := models.NewNote(strings.TrimSpace(title), unescape(content), color)
	u.report(u.notes.Add(u.ctx, note), txtNoteSaved)
}

func (u *UI) edit(id string) {
	note, ok := u.lookup(id)
	if !ok {
		return
	}

	u.println("(" + txtKeepHint.in(u.lang) + ")")

	title, ok := u.prompt(fmt.Sprintf("%s [%s]", txtTitle.in(u.lang), note.Title))
	if !ok {
		return
	}
	if strings.TrimSpace(title) != "" {
		note.Title = strings.TrimSpace(title)
	}

	content, ok := u.prompt(fmt.Sprintf("%s [%s]", txtContent.in(u.lang), oneLine(note.Content)))
	if !ok {
		return
	}
	if content != "" {
		note.Content = unescape(content)
	}

	color, ok := u.promptColor(note.Color)
	if !ok {
		return
	}
	note.Color = color
	note.Timestamp = u.now().UnixMilli()

	u.report(u.notes.Update(u.ctx, note), txtNoteSaved)
}

func (u *UI) delete(id string) {
	note, ok := u.lookup(id)
	if !ok {
		return
	}

	u.println(note.Title)
	u.println(txtDeleteMessage.in(u.lang))
	answer, ok := u.prompt(txtDeleteConfirm.in(u.lang))
	if !ok || !strings.EqualFold(strings.TrimSpace(answer), "y") {
		return
	}

	u.report(u.notes.Delete(u.ctx, note.ID.String()), txtNoteDeleted)
}

func (u *UI) pin(id string) {
	res, ok := u.notes.TogglePin(u.ctx, strings.TrimSpace(id))
	if !ok {
		u.println(txtNotFound.in(u.lang))
		return
	}

	done := txtUnpinned
	if res.Note.IsPinned {
		done = txtPinned
	}
	u.report(res, done)
}

func (u *UI) view(arg string) {
	var mode notesync.ViewMode
	if arg == "" {
		mode = u.notes.ToggleViewMode()
	} else {
		parsed, ok := notesync.ParseViewMode(arg)
		if !ok {
			u.println(txtUsage.in(u.lang) + ": view [grid|list]")
			return
		}
		u.notes.SetViewMode(parsed)
		mode = parsed
	}

	if mode == notesync.ViewList {
		u.println(txtListView.in(u.lang))
	} else {
		u.println(txtGridView.in(u.lang))
	}
	u.list()
}

func (u *UI) lookup(id string) (models.Note, bool) {
	id = strings.TrimSpace(id)
	note, ok := u.notes.Get(id)
	if !ok {
		u.println(txtNotFound.in(u.lang))
	}
	return note, ok
}

// report печатает итог операции; ошибка сервера показывается баннером
func (u *UI) report(res notesync.Result, done text) {
	switch res.AppliedTo {
	case notesync.AppliedRemote:
		u.println(done.in(u.lang))
	case notesync.AppliedLocalFallback:
		u.println(txtSavedLocally.in(u.lang))
	case notesync.Discarded:
		u.logger.Debug("result discarded: " + res.Err.Error())
	}
}

func (u *UI) banner() {
	if msg := u.notes.State().Error; msg != "" {
		u.println("! " + txtError.in(u.lang) + ": " + msg)
	}
}

func (u *UI) promptColor(current models.NoteColor) (models.NoteColor, bool) {
	names := make([]string, 0, len(models.Colors()))
	for _, c := range models.Colors() {
		names = append(names, strings.ToLower(c.String()))
	}
	u.println(txtColor.in(u.lang) + ": " + strings.Join(names, ", "))

	answer, ok := u.prompt(fmt.Sprintf("%s [%s]", txtColor.in(u.lang), strings.ToLower(current.String())))
	if !ok {
		return current, false
	}
	if strings.TrimSpace(answer) == "" {
		return current, true
	}

	color, ok := models.ParseNoteColor(answer)
	if !ok {
		return current, true
	}
	return color, true
}

func (u *UI) prompt(label string) (string, bool) {
	fmt.Fprint(u.out, label+": ")
	if !u.in.Scan() {
		return "", false
	}
	return u.in.Text(), true
}

func (u *UI) println(s string) {
	fmt.Fprintln(u.out, s)
}

// unescape turns a typed \n into a line break
func unescape(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
