// Package auth is the credential vault: users, login, and the terminal's session.
package auth

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"go-pos-vault/internal/audit"
	"go-pos-vault/internal/models"
	"go-pos-vault/internal/securestore"
	"go-pos-vault/internal/security"
)

// Messages returned in failed Results.
const (
	MsgInvalidCredentials = "Invalid username or password"
	MsgUsernameExists     = "Username already exists"
	MsgUsernameTaken      = "Username already taken"
	MsgSingleOwner        = "Only one Admin (Owner) is allowed."
	MsgUserNotFound       = "User not found"
	MsgDeleteSoleOwner    = "Cannot delete the only Admin account. Create another Admin first."
	MsgDemoteSoleOwner    = "Cannot remove the only Admin account. Transfer ownership first."
	MsgAlreadyOwner       = "User is already the Admin (Owner)."
	MsgUsernameRequired   = "Username is required"
	MsgPasswordRequired   = "Password is required"
	MsgInvalidRole        = "Role must be owner or cashier"
)

// Vault owns the user list and the current session.
type Vault struct {
	mu      sync.Mutex
	store   *securestore.Store
	audit   *audit.Log
	logger  *slog.Logger
	clock   func() time.Time
	cost    int
	admin   models.UserInput
	users   []models.User
	session *models.Session
}

// Option configures a Vault.
type Option func(*Vault)

// WithBcryptCost sets the bcrypt cost for new hashes.
func WithBcryptCost(cost int) Option {
	return func(v *Vault) { v.cost = cost }
}

// WithClock sets the clock used for session timestamps.
func WithClock(clock func() time.Time) Option {
	return func(v *Vault) { v.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Vault) { v.logger = logger }
}

// WithDefaultAdmin changes the owner account seeded on first start.
func WithDefaultAdmin(username, password string) Option {
	return func(v *Vault) {
		if username != "" {
			v.admin.Username = username
		}
		if password != "" {
			v.admin.Password = password
		}
	}
}

// NewVault returns an empty vault. Call Load before use.
func NewVault(store *securestore.Store, auditLog *audit.Log, opts ...Option) *Vault {
	v := &Vault{
		store:  store,
		audit:  auditLog,
		logger: slog.Default(),
		clock:  time.Now,
		cost:   bcrypt.DefaultCost,
		admin: models.UserInput{
			Username: "admin",
			Password: "admin123",
			Role:     models.RoleOwner,
			Name:     "Store Owner",
		},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Load reads users and the session from the store. With no stored users the
// default owner is seeded and persisted.
func (v *Vault) Load() error {
	users := securestore.Read(v.store, securestore.KeyUsers, []models.User(nil))
	session := securestore.Read[*models.Session](v.store, securestore.KeySession, nil)

	v.mu.Lock()
	defer v.mu.Unlock()

	if len(users) == 0 {
		seeded, err := v.seed()
		if err != nil {
			return err
		}
		users = seeded
	}
	v.users = users
	v.session = nil

	if session != nil && v.indexByID(session.UserID) >= 0 {
		v.session = session
	}
	return nil
}

// Reset forgets every user but the default owner and ends the session.
func (v *Vault) Reset() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	seeded, err := v.seed()
	if err != nil {
		return err
	}
	if err := v.store.Delete(securestore.KeySession); err != nil {
		return err
	}
	v.users = seeded
	v.session = nil
	return nil
}

func (v *Vault) seed() ([]models.User, error) {
	hash, err := security.HashPassword(v.admin.Password, v.cost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash default admin: %w", err)
	}
	users := []models.User{{
		ID:           1,
		Username:     v.admin.Username,
		PasswordHash: hash,
		Role:         models.RoleOwner,
		Name:         v.admin.Name,
	}}
	if err := v.store.Write(securestore.KeyUsers, users); err != nil {
		return nil, fmt.Errorf("auth: seed users: %w", err)
	}
	v.logger.Info("seeded default owner account", "username", v.admin.Username)
	return users, nil
}

// Login checks credentials and, on success, starts the session.
// Usernames are case-sensitive. A failure never says which field was wrong.
func (v *Vault) Login(username, password string) (models.Result, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	idx := v.indexByUsername(username)
	if idx < 0 || !security.CheckPassword(v.users[idx].PasswordHash, password) {
		return models.Fail(MsgInvalidCredentials), nil
	}
	user := v.users[idx]

	if security.IsLegacyDigest(user.PasswordHash) {
		v.upgradeHash(idx, password)
		user = v.users[idx]
	}

	session := models.Session{
		UserID:     user.ID,
		Username:   user.Username,
		Role:       user.Role,
		Name:       user.Name,
		LoggedInAt: v.clock().UTC(),
	}
	if err := v.store.Write(securestore.KeySession, session); err != nil {
		return models.Result{}, fmt.Errorf("auth: login: %w", err)
	}
	v.session = &session
	return models.OK(), nil
}

// upgradeHash swaps a legacy SHA-256 digest for bcrypt. Failure leaves the old digest in place.
func (v *Vault) upgradeHash(idx int, password string) {
	hash, err := security.HashPassword(password, v.cost)
	if err != nil {
		v.logger.Warn("password hash upgrade failed", "error", err)
		return
	}
	users := v.cloneUsers()
	users[idx].PasswordHash = hash
	if err := v.store.Write(securestore.KeyUsers, users); err != nil {
		v.logger.Warn("password hash upgrade not persisted", "error", err)
		return
	}
	v.users = users
}

// Logout ends the session.
func (v *Vault) Logout() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.store.Delete(securestore.KeySession); err != nil {
		return fmt.Errorf("auth: logout: %w", err)
	}
	v.session = nil
	return nil
}

// CurrentUser returns the logged-in user, if any.
func (v *Vault) CurrentUser() (models.Session, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.session == nil {
		return models.Session{}, false
	}
	return *v.session, true
}

// Users returns a copy of every user.
func (v *Vault) Users() []models.User {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cloneUsers()
}

// User looks a user up by id.
func (v *Vault) User(id int64) (models.User, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	idx := v.indexByID(id)
	if idx < 0 {
		return models.User{}, false
	}
	return v.users[idx], true
}

// AddUser creates a user with a fresh id and a hashed password.
func (v *Vault) AddUser(in models.UserInput, actor string) (models.User, models.Result, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	in.Username = strings.TrimSpace(in.Username)
	if violation, ok := models.Check(in); !ok {
		return models.User{}, models.Fail(violationMessage(violation)), nil
	}
	if v.indexByUsername(in.Username) >= 0 {
		return models.User{}, models.Fail(MsgUsernameExists), nil
	}
	if in.Role == models.RoleOwner && v.ownerCount(0) >= 1 {
		return models.User{}, models.Fail(MsgSingleOwner), nil
	}

	hash, err := security.HashPassword(in.Password, v.cost)
	if err != nil {
		return models.User{}, models.Result{}, fmt.Errorf("auth: hash password: %w", err)
	}
	user := models.User{
		ID:           v.nextID(),
		Username:     in.Username,
		PasswordHash: hash,
		Role:         in.Role,
		Name:         in.Name,
		Photo:        in.Photo,
	}

	users := append(v.cloneUsers(), user)
	if err := v.store.Write(securestore.KeyUsers, users); err != nil {
		return models.User{}, models.Result{}, fmt.Errorf("auth: add user: %w", err)
	}
	v.users = users

	err = v.record(audit.ActionAddUser, fmt.Sprintf("Added user: %s (%s)", user.Username, user.Role), actor)
	return user, models.OK(), err
}

// UpdateUser applies patch to user id. An empty or absent password keeps the current hash.
func (v *Vault) UpdateUser(id int64, patch models.UserPatch, actor string) (models.Result, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	idx := v.indexByID(id)
	if idx < 0 {
		return models.Fail(MsgUserNotFound), nil
	}
	users := v.cloneUsers()
	user := users[idx]

	if patch.Username != nil {
		name := strings.TrimSpace(*patch.Username)
		if name == "" {
			return models.Fail(MsgUsernameRequired), nil
		}
		if other := v.indexByUsername(name); other >= 0 && v.users[other].ID != id {
			return models.Fail(MsgUsernameTaken), nil
		}
		user.Username = name
	}
	if patch.Role != nil {
		role := *patch.Role
		if !role.Valid() {
			return models.Fail(MsgInvalidRole), nil
		}
		if role == models.RoleOwner && v.ownerCount(id) >= 1 {
			return models.Fail(MsgSingleOwner), nil
		}
		if role != models.RoleOwner && user.Role == models.RoleOwner && v.ownerCount(id) == 0 {
			return models.Fail(MsgDemoteSoleOwner), nil
		}
		user.Role = role
	}
	if patch.Password != nil && *patch.Password != "" {
		hash, err := security.HashPassword(*patch.Password, v.cost)
		if err != nil {
			return models.Result{}, fmt.Errorf("auth: hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Photo != nil {
		user.Photo = *patch.Photo
	}

	users[idx] = user
	if err := v.commitUsers(users); err != nil {
		return models.Result{}, fmt.Errorf("auth: update user: %w", err)
	}
	return models.OK(), v.record(audit.ActionUpdateUser, "Updated user: "+user.Username, actor)
}

// TransferOwnership makes user id the owner and demotes the current owner to cashier.
func (v *Vault) TransferOwnership(id int64, actor string) (models.Result, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	idx := v.indexByID(id)
	if idx < 0 {
		return models.Fail(MsgUserNotFound), nil
	}
	if v.users[idx].Role == models.RoleOwner {
		return models.Fail(MsgAlreadyOwner), nil
	}

	users := v.cloneUsers()
	for i := range users {
		if users[i].Role == models.RoleOwner {
			users[i].Role = models.RoleCashier
		}
	}
	users[idx].Role = models.RoleOwner

	if err := v.commitUsers(users); err != nil {
		return models.Result{}, fmt.Errorf("auth: transfer ownership: %w", err)
	}
	return models.OK(), v.record(audit.ActionUpdateUser, "Transferred ownership to: "+users[idx].Username, actor)
}

// DeleteUser removes user id. The sole owner cannot be deleted.
func (v *Vault) DeleteUser(id int64, actor string) (models.Result, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	idx := v.indexByID(id)
	if idx < 0 {
		return models.Fail(MsgUserNotFound), nil
	}
	target := v.users[idx]
	if target.Role == models.RoleOwner && v.ownerCount(0) <= 1 {
		return models.Fail(MsgDeleteSoleOwner), nil
	}

	users := make([]models.User, 0, len(v.users)-1)
	for _, u := range v.users {
		if u.ID != id {
			users = append(users, u)
		}
	}
	if err := v.store.Write(securestore.KeyUsers, users); err != nil {
		return models.Result{}, fmt.Errorf("auth: delete user: %w", err)
	}
	v.users = users

	if v.session != nil && v.session.UserID == id {
		if err := v.store.Delete(securestore.KeySession); err != nil {
			return models.Result{}, fmt.Errorf("auth: end session: %w", err)
		}
		v.session = nil
	}
	return models.OK(), v.record(audit.ActionDeleteUser, "Deleted user: "+target.Username, actor)
}

// commitUsers persists users, then refreshes the session if its user changed.
func (v *Vault) commitUsers(users []models.User) error {
	if err := v.store.Write(securestore.KeyUsers, users); err != nil {
		return err
	}
	v.users = users

	if v.session == nil {
		return nil
	}
	idx := v.indexByID(v.session.UserID)
	if idx < 0 {
		return nil
	}
	u := users[idx]
	if u.Username == v.session.Username && u.Role == v.session.Role && u.Name == v.session.Name {
		return nil
	}
	session := *v.session
	session.Username, session.Role, session.Name = u.Username, u.Role, u.Name
	if err := v.store.Write(securestore.KeySession, session); err != nil {
		return err
	}
	v.session = &session
	return nil
}

func (v *Vault) record(action, details, actor string) error {
	if v.audit == nil {
		return nil
	}
	_, err := v.audit.Append(action, details, actor)
	return err
}

func (v *Vault) cloneUsers() []models.User {
	return append([]models.User(nil), v.users...)
}

func (v *Vault) indexByID(id int64) int {
	for i, u := range v.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (v *Vault) indexByUsername(username string) int {
	for i, u := range v.users {
		if u.Username == username {
			return i
		}
	}
	return -1
}

// ownerCount counts owners other than the user with id except.
func (v *Vault) ownerCount(except int64) int {
	n := 0
	for _, u := range v.users {
		if u.Role == models.RoleOwner && u.ID != except {
			n++
		}
	}
	return n
}

func (v *Vault) nextID() int64 {
	var max int64
	for _, u := range v.users {
		if u.ID > max {
			max = u.ID
		}
	}
	return max + 1
}

func violationMessage(v models.Violation) string {
	switch v.Field {
	case "Username":
		return MsgUsernameRequired
	case "Password":
		return MsgPasswordRequired
	case "Role":
		return MsgInvalidRole
	}
	return "Invalid user: " + v.Tag
}
