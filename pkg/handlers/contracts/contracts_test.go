package contracts_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chris/escrow-wallet/pkg/api"
	"github.com/chris/escrow-wallet/pkg/auth"
	"github.com/chris/escrow-wallet/pkg/escrow"
	"github.com/chris/escrow-wallet/pkg/handlers/contracts"
	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/chris/escrow-wallet/pkg/storage/memory"
	"github.com/chris/escrow-wallet/pkg/wallet"
	"github.com/chris/escrow-wallet/pkg/websockets"
	"github.com/chris/escrow-wallet/pkg/websockets/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	client     = auth.Principal{UserID: "client", Role: auth.RoleClient}
	freelancer = auth.Principal{UserID: "freelancer", Role: auth.RoleFreelancer}
	stranger   = auth.Principal{UserID: "stranger", Role: auth.RoleClient}
	admin      = auth.Principal{UserID: "ops", Role: auth.RoleAdmin}
)

type fixture struct {
	wallets *wallet.Service
	handler *contracts.ContractsHandler
}

func newFixture(t *testing.T, publisher websockets.Publisher) *fixture {
	t.Helper()
	store := memory.New()
	ws := wallet.NewService(store, "inr")
	_, err := ws.Credit(context.Background(), "client", 100000, models.TxMeta{Reason: "deposit"})
	require.NoError(t, err)
	return &fixture{
		wallets: ws,
		handler: contracts.NewContractsHandler(escrow.NewCoordinator(store, ws), "inr", websockets.NewNotifier(publisher, store)),
	}
}

func request(method, target string, p auth.Principal, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	return req.WithContext(auth.WithPrincipal(req.Context(), p))
}

func newEscrow() api.NewEscrow {
	return api.NewEscrow{
		JobId:        "job-1",
		ProposalId:   "proposal-1",
		FreelancerId: "freelancer",
		TotalAmount:  60000,
		Milestones: []api.NewMilestone{
			{Title: "Design", Amount: 20000},
			{Title: "Build", Amount: 40000},
		},
	}
}

// open funds contract c1 and returns its milestone ids.
func (f *fixture) open(t *testing.T) []string {
	t.Helper()
	rr := httptest.NewRecorder()
	f.handler.OpenEscrow(rr, request(http.MethodPost, "/contracts/c1/escrow", client, newEscrow()), "c1")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var got api.EscrowResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	ids := make([]string, len(got.Milestones))
	for i, m := range got.Milestones {
		ids[i] = m.Id
	}
	return ids
}

func (f *fixture) call(t *testing.T, fn func(http.ResponseWriter, *http.Request, string), p auth.Principal, id string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	fn(rr, request(http.MethodPost, "/", p, body), id)
	return rr
}

func (f *fixture) balance(t *testing.T, userID string) *models.Wallet {
	t.Helper()
	w, err := f.wallets.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	return w
}

func TestOpenEscrow(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newFixture(t, nil)
		rr := httptest.NewRecorder()

		f.handler.OpenEscrow(rr, request(http.MethodPost, "/contracts/c1/escrow", client, newEscrow()), "c1")

		assert.Equal(t, http.StatusCreated, rr.Code)
		var got api.EscrowResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.NotEmpty(t, got.HoldId)
		assert.Equal(t, "c1", got.Contract.Id)
		assert.Equal(t, "client", got.Contract.ClientId)
		assert.Equal(t, string(models.EscrowFundsHeld), got.Contract.EscrowStatus)
		assert.Len(t, got.Milestones, 2)

		w := f.balance(t, "client")
		assert.Equal(t, int64(40000), w.Balance)
		assert.Equal(t, int64(60000), w.HeldTotal())
	})

	t.Run("Already Held", func(t *testing.T) {
		f := newFixture(t, nil)
		f.open(t)

		rr := f.call(t, f.handler.OpenEscrow, client, "c1", newEscrow())

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, int64(60000), f.balance(t, "client").HeldTotal())
	})

	t.Run("Insufficient Funds", func(t *testing.T) {
		f := newFixture(t, nil)
		body := newEscrow()
		body.TotalAmount = 200000
		body.Milestones = nil

		rr := f.call(t, f.handler.OpenEscrow, client, "c1", body)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Equal(t, int64(100000), f.balance(t, "client").Balance)
	})

	t.Run("Milestones Must Add Up", func(t *testing.T) {
		f := newFixture(t, nil)
		body := newEscrow()
		body.TotalAmount = 50000

		rr := f.call(t, f.handler.OpenEscrow, client, "c1", body)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("For Another Client", func(t *testing.T) {
		f := newFixture(t, nil)
		body := newEscrow()
		other := "client"
		body.ClientId = &other

		rr := f.call(t, f.handler.OpenEscrow, stranger, "c1", body)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestMilestoneLifecycle(t *testing.T) {
	t.Run("Submit And Approve", func(t *testing.T) {
		publisher := mocks.NewPublisher(t)
		f := newFixture(t, publisher)
		publisher.On("Publish", mock.Anything, "client", mock.Anything).Return(nil)
		publisher.On("Publish", mock.Anything, "freelancer", mock.Anything).Return(nil)
		ids := f.open(t)

		rr := f.call(t, f.handler.ApproveMilestone, client, ids[0], nil)
		assert.Equal(t, http.StatusConflict, rr.Code, "pending milestones cannot be approved")

		rr = f.call(t, f.handler.SubmitMilestone, client, ids[0], api.SubmitMilestone{Deliverables: []string{"mockups.pdf"}})
		assert.Equal(t, http.StatusForbidden, rr.Code, "only the freelancer submits")

		rr = f.call(t, f.handler.SubmitMilestone, freelancer, ids[0], api.SubmitMilestone{Deliverables: []string{"mockups.pdf"}})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"status":"submitted"`)

		rr = f.call(t, f.handler.ApproveMilestone, freelancer, ids[0], nil)
		assert.Equal(t, http.StatusForbidden, rr.Code, "only the client approves")

		rr = f.call(t, f.handler.ApproveMilestone, client, ids[0], nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var got api.ApproveResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.NotEmpty(t, got.TransactionId)
		assert.NotEmpty(t, got.CreditTransactionId)
		assert.Equal(t, string(models.MilestoneReleased), got.Milestone.Status)

		assert.Equal(t, int64(20000), f.balance(t, "freelancer").Balance)
		assert.Equal(t, int64(40000), f.balance(t, "client").HeldTotal())

		rr = f.call(t, f.handler.ApproveMilestone, client, ids[0], nil)
		assert.Equal(t, http.StatusConflict, rr.Code, "a milestone is paid once")
		assert.Equal(t, int64(20000), f.balance(t, "freelancer").Balance)

		publisher.AssertCalled(t, "Publish", mock.Anything, "freelancer", mock.MatchedBy(func(m websockets.Message) bool {
			p, ok := m.Payload.(websockets.WalletUpdatePayload)
			return ok && p.NewBalance == 20000 && p.Change == 20000
		}))
	})

	t.Run("Dispute Blocks Approval Until Reset", func(t *testing.T) {
		f := newFixture(t, nil)
		ids := f.open(t)
		require.Equal(t, http.StatusOK, f.call(t, f.handler.SubmitMilestone, freelancer, ids[1], nil).Code)

		rr := f.call(t, f.handler.DisputeMilestone, stranger, ids[1], nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)

		rr = f.call(t, f.handler.DisputeMilestone, client, ids[1], nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"status":"disputed"`)

		assert.Equal(t, http.StatusConflict, f.call(t, f.handler.ApproveMilestone, client, ids[1], nil).Code)
		assert.Equal(t, http.StatusConflict, f.call(t, f.handler.RefundContract, client, "c1", nil).Code)
		assert.Equal(t, http.StatusForbidden, f.call(t, f.handler.ResetMilestone, client, ids[1], nil).Code)

		rr = f.call(t, f.handler.ResetMilestone, admin, ids[1], nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"status":"submitted"`)

		assert.Equal(t, http.StatusOK, f.call(t, f.handler.ApproveMilestone, client, ids[1], nil).Code)
		assert.Equal(t, int64(40000), f.balance(t, "freelancer").Balance)
	})

	t.Run("Unknown Milestone", func(t *testing.T) {
		f := newFixture(t, nil)

		rr := f.call(t, f.handler.SubmitMilestone, freelancer, "missing", nil)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestRefundContract(t *testing.T) {
	t.Run("Returns Remaining Escrow", func(t *testing.T) {
		f := newFixture(t, nil)
		ids := f.open(t)
		require.Equal(t, http.StatusOK, f.call(t, f.handler.SubmitMilestone, freelancer, ids[0], nil).Code)
		require.Equal(t, http.StatusOK, f.call(t, f.handler.ApproveMilestone, client, ids[0], nil).Code)

		rr := f.call(t, f.handler.RefundContract, client, "c1", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		var got api.RefundContractResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Len(t, got.TransactionIds, 1)

		w := f.balance(t, "client")
		assert.Equal(t, int64(80000), w.Balance)
		assert.Equal(t, int64(0), w.HeldTotal())

		rr = f.call(t, f.handler.RefundContract, client, "c1", nil)
		assert.Equal(t, http.StatusConflict, rr.Code, "a contract is refunded once")
	})

	t.Run("Freelancer Cannot Refund", func(t *testing.T) {
		f := newFixture(t, nil)
		f.open(t)

		rr := f.call(t, f.handler.RefundContract, freelancer, "c1", nil)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestGetContract(t *testing.T) {
	f := newFixture(t, nil)
	f.open(t)

	t.Run("Party", func(t *testing.T) {
		rr := httptest.NewRecorder()
		f.handler.GetContract(rr, request(http.MethodGet, "/contracts/c1", freelancer, nil), "c1")

		assert.Equal(t, http.StatusOK, rr.Code)
		var got api.ContractView
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, int64(60000), got.Contract.TotalAmount)
		assert.Len(t, got.Milestones, 2)
	})

	t.Run("Stranger", func(t *testing.T) {
		rr := httptest.NewRecorder()
		f.handler.GetContract(rr, request(http.MethodGet, "/contracts/c1", stranger, nil), "c1")

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("Missing", func(t *testing.T) {
		rr := httptest.NewRecorder()
		f.handler.GetContract(rr, request(http.MethodGet, "/contracts/c2", admin, nil), "c2")

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestListContracts(t *testing.T) {
	f := newFixture(t, nil)
	f.open(t)

	list := func(p auth.Principal, params api.ListContractsParams) (*httptest.ResponseRecorder, []api.Contract) {
		rr := httptest.NewRecorder()
		f.handler.ListContracts(rr, request(http.MethodGet, "/contracts", p, nil), params)
		var got []api.Contract
		if rr.Code == http.StatusOK {
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		}
		return rr, got
	}
	str := func(s string) *string { return &s }

	t.Run("Party Sees Own", func(t *testing.T) {
		rr, got := list(freelancer, api.ListContractsParams{})
		assert.Equal(t, http.StatusOK, rr.Code)
		require.Len(t, got, 1)
		assert.Equal(t, "c1", got[0].Id)
	})

	t.Run("Stranger Gets Empty List", func(t *testing.T) {
		rr, got := list(stranger, api.ListContractsParams{})
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "[]\n", rr.Body.String())
		assert.Empty(t, got)
	})

	t.Run("Other User Is Forbidden", func(t *testing.T) {
		rr, _ := list(stranger, api.ListContractsParams{UserId: str("client")})
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("Admin Names A User", func(t *testing.T) {
		rr, got := list(admin, api.ListContractsParams{UserId: str("client")})
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, got, 1)
	})
}

func TestGetContractStats(t *testing.T) {
	f := newFixture(t, nil)
	f.open(t)
	rr := httptest.NewRecorder()

	f.handler.GetContractStats(rr, request(http.MethodGet, "/contracts/stats", admin, nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var got []api.StatusGroup
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, len(models.ContractStatuses))
	for _, g := range got {
		if g.Key == string(models.ContractActive) {
			assert.Equal(t, 1, g.Count)
			assert.Equal(t, int64(60000), g.Total)
			assert.Equal(t, "600.00", g.TotalDisplay)
		} else {
			assert.Zero(t, g.Count, g.Key)
		}
	}
}

func TestListMilestones(t *testing.T) {
	f := newFixture(t, nil)
	ids := f.open(t)
	rr := httptest.NewRecorder()
	f.handler.SubmitMilestone(rr, request(http.MethodPost, "/milestones/"+ids[0]+"/submit", freelancer, api.SubmitMilestone{Deliverables: []string{"mockups"}}), ids[0])
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	list := func(status *string) (*httptest.ResponseRecorder, []api.Milestone) {
		rr := httptest.NewRecorder()
		f.handler.ListMilestones(rr, request(http.MethodGet, "/milestones", admin, nil), api.ListMilestonesParams{Status: status})
		var got []api.Milestone
		if rr.Code == http.StatusOK {
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		}
		return rr, got
	}
	str := func(s string) *string { return &s }

	t.Run("All", func(t *testing.T) {
		rr, got := list(nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, got, 2)
	})

	t.Run("By Status", func(t *testing.T) {
		rr, got := list(str("Submitted"))
		assert.Equal(t, http.StatusOK, rr.Code)
		require.Len(t, got, 1)
		assert.Equal(t, ids[0], got[0].Id)
	})

	t.Run("Unknown Status", func(t *testing.T) {
		rr, _ := list(str("archived"))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
