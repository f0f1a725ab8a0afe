package otp

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront-auth/constants"
	accountModel "storefront-auth/models/account"
	otpModel "storefront-auth/models/otp"
	recoveryModel "storefront-auth/models/recovery"
)

// memoryStore mirrors the gorm store's semantics: consumption is a
// conditional flip under a lock, and a failing complete callback rolls
// the flip back.
type memoryStore struct {
	mu   sync.Mutex
	rows []*otpModel.OTP
}

func (m *memoryStore) Create(rec *otpModel.OTP) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := *rec
	r.ID = uint(len(m.rows) + 1)
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	m.rows = append(m.rows, &r)
	rec.ID = r.ID
	return nil
}

func (m *memoryStore) InvalidatePending(target string, flow otpModel.FlowType) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range m.rows {
		if row.Target == target && row.FlowType == flow && !row.Consumed {
			row.Consumed = true
		}
	}
	return nil
}

func (m *memoryStore) Consume(target, code string, flow otpModel.FlowType, now time.Time, complete func(tx *gorm.DB) error) (ConsumeStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range m.rows {
		if row.Target != target || row.Code != code || row.FlowType != flow {
			continue
		}
		if row.Consumed || !row.ExpiresAt.After(now) {
			continue
		}

		row.Consumed = true
		if complete != nil {
			if err := complete(nil); err != nil {
				row.Consumed = false
				return ConsumeNoMatch, err
			}
		}
		return ConsumeOK, nil
	}
	return ConsumeNoMatch, nil
}

func (m *memoryStore) LatestPending(target string, flow otpModel.FlowType, now time.Time) (*otpModel.OTP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var latest *otpModel.OTP
	for _, row := range m.rows {
		if row.Target != target || row.FlowType != flow || row.Consumed || !row.ExpiresAt.After(now) {
			continue
		}
		if latest == nil || row.CreatedAt.After(latest.CreatedAt) {
			latest = row
		}
	}
	return latest, nil
}

func (m *memoryStore) DeleteExpiredBefore(cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var kept []*otpModel.OTP
	var deleted int64
	for _, row := range m.rows {
		if row.ExpiresAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, row)
	}
	m.rows = kept
	return deleted, nil
}

type fakeAccounts struct {
	mu       sync.Mutex
	byTarget map[string]*accountModel.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byTarget: make(map[string]*accountModel.Account)}
}

func (f *fakeAccounts) add(target string, role string) *accountModel.Account {
	f.mu.Lock()
	defer f.mu.Unlock()

	acct := &accountModel.Account{Uuid: uuid.NewString(), Role: role}
	email := target
	acct.Email = &email
	f.byTarget[target] = acct
	return acct
}

func (f *fakeAccounts) remove(target string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byTarget, target)
}

func (f *fakeAccounts) Exists(target Target) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byTarget[target.Value]
	return ok, nil
}

func (f *fakeAccounts) FindByTarget(target Target) (*accountModel.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byTarget[target.Value], nil
}

func (f *fakeAccounts) Create(target Target, password string) (*accountModel.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	acct := &accountModel.Account{
		Uuid:         uuid.NewString(),
		Role:         constants.RoleUser,
		PasswordHash: "hashed:" + password,
	}
	switch target.Channel {
	case otpModel.ChannelEmail:
		email := target.Value
		acct.Email = &email
	case otpModel.ChannelPhone:
		phone := target.Value
		acct.Phone = &phone
	}
	f.byTarget[target.Value] = acct
	return acct, nil
}

func (f *fakeAccounts) WithTx(tx *gorm.DB) AccountStore { return f }

type sentMessage struct {
	target  string
	channel otpModel.Channel
	subject string
	body    string
}

type fakeMessenger struct {
	delivered bool
	sent      []sentMessage
}

func (f *fakeMessenger) Send(target string, channel otpModel.Channel, subject, body string) bool {
	f.sent = append(f.sent, sentMessage{target: target, channel: channel, subject: subject, body: body})
	return f.delivered
}

type fakeRecovery struct {
	issued []string
}

func (f *fakeRecovery) Issue(accountUuid string) (*recoveryModel.Token, error) {
	token := &recoveryModel.Token{
		Token:       uuid.NewString(),
		AccountUuid: accountUuid,
		ExpiresAt:   time.Now().Add(15 * time.Minute),
	}
	f.issued = append(f.issued, token.Token)
	return token, nil
}

func (f *fakeRecovery) WithTx(tx *gorm.DB) RecoveryIssuer { return f }

type fixture struct {
	store     *memoryStore
	accounts  *fakeAccounts
	messenger *fakeMessenger
	recovery  *fakeRecovery
	service   *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:     &memoryStore{},
		accounts:  newFakeAccounts(),
		messenger: &fakeMessenger{delivered: true},
		recovery:  &fakeRecovery{},
	}
	f.service = NewService(f.store, f.accounts, f.messenger, f.recovery, Policy{
		Lifetime:   10 * time.Minute,
		CodeLength: 6,
	})
	return f
}

func TestIssueLoginRequiresAccount(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Issue("missing@x.com", "", otpModel.FlowLogin)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.Empty(t, f.store.rows, "gate rejection must not write a record")
	assert.Empty(t, f.messenger.sent)
}

func TestIssueRecoveryRequiresAccount(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Issue("missing@x.com", "", otpModel.FlowRecovery)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestIssueSignupRejectsExistingAccount(t *testing.T) {
	f := newFixture(t)
	f.accounts.add("taken@x.com", constants.RoleUser)

	_, err := f.service.Issue("taken@x.com", "", otpModel.FlowSignup)
	assert.ErrorIs(t, err, ErrAccountExists)
	assert.Empty(t, f.store.rows)
}

func TestIssueRejectsEmptyTarget(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Issue("", "", otpModel.FlowSignup)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestIssueCreatesPendingRecord(t *testing.T) {
	f := newFixture(t)
	f.accounts.add("user@x.com", constants.RoleUser)

	before := time.Now()
	result, err := f.service.Issue("User@X.com", "", otpModel.FlowLogin)
	require.NoError(t, err)

	assert.True(t, result.Delivered)
	rec := result.Record
	assert.Equal(t, "user@x.com", rec.Target, "email target must be case-folded")
	assert.Equal(t, otpModel.ChannelEmail, rec.Channel)
	assert.Equal(t, otpModel.FlowLogin, rec.FlowType)
	assert.False(t, rec.Consumed)
	assert.Len(t, rec.Code, 6)
	assert.WithinDuration(t, before.Add(10*time.Minute), rec.ExpiresAt, 2*time.Second)

	require.Len(t, f.messenger.sent, 1)
	assert.Equal(t, "user@x.com", f.messenger.sent[0].target)
	assert.Contains(t, f.messenger.sent[0].body, rec.Code)
}

func TestIssueDeliveryFailureIsSoft(t *testing.T) {
	f := newFixture(t)
	f.messenger.delivered = false
	f.accounts.add("user@x.com", constants.RoleUser)

	result, err := f.service.Issue("user@x.com", "", otpModel.FlowLogin)
	require.NoError(t, err)

	assert.False(t, result.Delivered)

	// The code stays usable even though the channel failed.
	verified, err := f.service.Verify("user@x.com", "", result.Record.Code, otpModel.FlowLogin, "", nil)
	require.NoError(t, err)
	assert.NotNil(t, verified.Account)
}

func TestReissueInvalidatesPriorCode(t *testing.T) {
	f := newFixture(t)
	f.accounts.add("user@x.com", constants.RoleUser)

	first, err := f.service.Issue("user@x.com", "", otpModel.FlowLogin)
	require.NoError(t, err)
	second, err := f.service.Issue("user@x.com", "", otpModel.FlowLogin)
	require.NoError(t, err)

	_, err = f.service.Verify("user@x.com", "", first.Record.Code, otpModel.FlowLogin, "", nil)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode, "superseded code must be dead")

	result, err := f.service.Verify("user@x.com", "", second.Record.Code, otpModel.FlowLogin, "", nil)
	require.NoError(t, err)
	assert.NotNil(t, result.Account)
}

func TestVerifySignupCreatesAccountAndSession(t *testing.T) {
	f := newFixture(t)

	issued, err := f.service.Issue("new@x.com", "", otpModel.FlowSignup)
	require.NoError(t, err)

	var establishedUuid string
	var establishedAdmin bool
	establish := func(accountUuid string, isAdmin bool) error {
		establishedUuid = accountUuid
		establishedAdmin = isAdmin
		return nil
	}

	result, err := f.service.Verify("new@x.com", "", issued.Record.Code, otpModel.FlowSignup, "hunter22", establish)
	require.NoError(t, err)

	assert.True(t, result.AccountCreated)
	require.NotNil(t, result.Account)
	assert.Equal(t, result.Account.Uuid, establishedUuid)
	assert.False(t, establishedAdmin)

	exists, err := f.accounts.Exists(Target{Value: "new@x.com", Channel: otpModel.ChannelEmail})
	require.NoError(t, err)
	assert.True(t, exists)

	// Consumed for good.
	_, err = f.service.Verify("new@x.com", "", issued.Record.Code, otpModel.FlowSignup, "hunter22", nil)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
}

func TestVerifySignupWithoutPasswordKeepsCode(t *testing.T) {
	f := newFixture(t)

	issued, err := f.service.Issue("new@x.com", "", otpModel.FlowSignup)
	require.NoError(t, err)

	_, err = f.service.Verify("new@x.com", "", issued.Record.Code, otpModel.FlowSignup, "", nil)
	assert.ErrorIs(t, err, ErrPasswordRequired)

	// The missing password must not burn the code.
	result, err := f.service.Verify("new@x.com", "", issued.Record.Code, otpModel.FlowSignup, "hunter22", nil)
	require.NoError(t, err)
	assert.True(t, result.AccountCreated)
}

func TestVerifySignupRechecksExistence(t *testing.T) {
	f := newFixture(t)

	issued, err := f.service.Issue("new@x.com", "", otpModel.FlowSignup)
	require.NoError(t, err)

	// Account appears between issuance and verification.
	f.accounts.add("new@x.com", constants.RoleUser)

	_, err = f.service.Verify("new@x.com", "", issued.Record.Code, otpModel.FlowSignup, "hunter22", nil)
	assert.ErrorIs(t, err, ErrAccountExists)

	// The failed completion must roll the consumption back.
	pending, err := f.service.LatestPending("new@x.com", "", otpModel.FlowSignup)
	require.NoError(t, err)
	assert.NotNil(t, pending)
}

func TestVerifyLoginAccountGone(t *testing.T) {
	f := newFixture(t)
	f.accounts.add("user@x.com", constants.RoleUser)

	issued, err := f.service.Issue("user@x.com", "", otpModel.FlowLogin)
	require.NoError(t, err)

	f.accounts.remove("user@x.com")

	_, err = f.service.Verify("user@x.com", "", issued.Record.Code, otpModel.FlowLogin, "", nil)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestVerifyLoginEstablishesAdminSession(t *testing.T) {
	f := newFixture(t)
	f.accounts.add("admin@x.com", constants.RoleAdmin)

	issued, err := f.service.Issue("admin@x.com", "", otpModel.FlowLogin)
	require.NoError(t, err)

	var establishedAdmin bool
	result, err := f.service.Verify("admin@x.com", "", issued.Record.Code, otpModel.FlowLogin, "", func(accountUuid string, isAdmin bool) error {
		establishedAdmin = isAdmin
		return nil
	})
	require.NoError(t, err)

	assert.True(t, establishedAdmin)
	assert.False(t, result.AccountCreated)
}

func TestVerifyRecoveryReturnsResetToken(t *testing.T) {
	f := newFixture(t)
	f.accounts.add("user@x.com", constants.RoleUser)

	issued, err := f.service.Issue("user@x.com", "", otpModel.FlowRecovery)
	require.NoError(t, err)

	established := false
	result, err := f.service.Verify("user@x.com", "", issued.Record.Code, otpModel.FlowRecovery, "", func(string, bool) error {
		established = true
		return nil
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.ResetToken)
	assert.Contains(t, f.recovery.issued, result.ResetToken)
	assert.False(t, established, "recovery must not establish a session")
	assert.False(t, result.AccountCreated)
}

func TestVerifyWrongCode(t *testing.T) {
	f := newFixture(t)
	f.accounts.add("user@x.com", constants.RoleUser)

	issued, err := f.service.Issue("user@x.com", "", otpModel.FlowLogin)
	require.NoError(t, err)

	wrong := "000000"
	if issued.Record.Code == wrong {
		wrong = "000001"
	}
	_, err = f.service.Verify("user@x.com", "", wrong, otpModel.FlowLogin, "", nil)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
}

func TestVerifyWrongFlowType(t *testing.T) {
	f := newFixture(t)
	f.accounts.add("user@x.com", constants.RoleUser)

	issued, err := f.service.Issue("user@x.com", "", otpModel.FlowLogin)
	require.NoError(t, err)

	// Same target and code, different flow: must not match.
	_, err = f.service.Verify("user@x.com", "", issued.Record.Code, otpModel.FlowRecovery, "", nil)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
}

func TestVerifyExpiredCode(t *testing.T) {
	f := newFixture(t)
	f.accounts.add("user@x.com", constants.RoleUser)

	// Inject a record whose window has already closed.
	rec := &otpModel.OTP{
		Target:    "user@x.com",
		Channel:   otpModel.ChannelEmail,
		Code:      "123456",
		FlowType:  otpModel.FlowRecovery,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, f.store.Create(rec))

	_, err := f.service.Verify("user@x.com", "", "123456", otpModel.FlowRecovery, "", nil)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
}

func TestConcurrentVerifySingleWinner(t *testing.T) {
	f := newFixture(t)
	f.accounts.add("user@x.com", constants.RoleUser)

	issued, err := f.service.Issue("user@x.com", "", otpModel.FlowLogin)
	require.NoError(t, err)

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.Verify("user@x.com", "", issued.Record.Code, otpModel.FlowLogin, "", nil)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
		}
	}
	assert.Equal(t, 1, successes, "exactly one concurrent verify may win")
}

func TestPurgeExpiredBefore(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.store.Create(&otpModel.OTP{
		Target: "a@x.com", Code: "111111", FlowType: otpModel.FlowLogin,
		ExpiresAt: time.Now().Add(-48 * time.Hour),
	}))
	require.NoError(t, f.store.Create(&otpModel.OTP{
		Target: "b@x.com", Code: "222222", FlowType: otpModel.FlowLogin,
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}))

	deleted, err := f.service.PurgeExpiredBefore(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestErrorCodes(t *testing.T) {
	assert.Equal(t, CodeInvalidRequest, ErrorCode(ErrInvalidRequest))
	assert.Equal(t, CodeUserNotFound, ErrorCode(ErrAccountNotFound))
	assert.Equal(t, CodeUserExists, ErrorCode(ErrAccountExists))
	assert.Equal(t, CodeInvalidOrExpired, ErrorCode(ErrInvalidOrExpiredCode))
	assert.Equal(t, CodePasswordRequired, ErrorCode(ErrPasswordRequired))
	assert.Empty(t, ErrorCode(gorm.ErrRecordNotFound))
}
