package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cropify/cropify/store"
)

type createTransactionRequest struct {
	Kind       string `json:"kind"`
	Category   string `json:"category"`
	Amount     int64  `json:"amount"` // minor currency units
	Note       string `json:"note"`
	OccurredTs int64  `json:"occurredTs"`
}

func (s *APIV1Service) CreateTransaction(c echo.Context) error {
	ctx := c.Request().Context()

	request := &createTransactionRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}

	kind := store.TransactionKind(request.Kind)
	if kind != store.TransactionIncome && kind != store.TransactionExpense {
		return echo.NewHTTPError(http.StatusBadRequest, "kind must be income or expense")
	}
	if request.Amount <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "amount must be positive")
	}

	transaction, err := s.Store.CreateTransaction(ctx, &store.Transaction{
		Kind:       kind,
		Category:   request.Category,
		Amount:     request.Amount,
		Note:       request.Note,
		OccurredTs: request.OccurredTs,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create transaction").SetInternal(err)
	}
	return c.JSON(http.StatusOK, convertTransaction(transaction))
}

// transactionFind parses the shared query filters: kind, category, and an
// occurredTs half-open range [from, to).
func transactionFind(c echo.Context) (*store.FindTransaction, error) {
	find := &store.FindTransaction{}
	if raw := c.QueryParam("kind"); raw != "" {
		kind := store.TransactionKind(raw)
		if kind != store.TransactionIncome && kind != store.TransactionExpense {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "kind must be income or expense")
		}
		find.Kind = &kind
	}
	if raw := c.QueryParam("category"); raw != "" {
		find.Category = &raw
	}
	for param, target := range map[string]**int64{"from": &find.OccurredGe, "to": &find.OccurredLt} {
		raw := c.QueryParam(param)
		if raw == "" {
			continue
		}
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+param+" timestamp")
		}
		*target = &ts
	}
	return find, nil
}

func (s *APIV1Service) ListTransactions(c echo.Context) error {
	ctx := c.Request().Context()

	find, err := transactionFind(c)
	if err != nil {
		return err
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		find.Limit = &limit
		if raw := c.QueryParam("offset"); raw != "" {
			offset, err := strconv.Atoi(raw)
			if err != nil || offset < 0 {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid offset")
			}
			find.Offset = &offset
		}
	}

	transactions, err := s.Store.ListTransactions(ctx, find)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list transactions").SetInternal(err)
	}

	payload := make([]*transactionPayload, 0, len(transactions))
	for _, transaction := range transactions {
		payload = append(payload, convertTransaction(transaction))
	}
	return c.JSON(http.StatusOK, payload)
}

func (s *APIV1Service) DeleteTransaction(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid transaction id")
	}
	if err := s.Store.DeleteTransaction(ctx, &store.DeleteTransaction{ID: id}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete transaction").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type transactionSummaryResponse struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Profit  int64 `json:"profit"`
}

func (s *APIV1Service) GetTransactionSummary(c echo.Context) error {
	ctx := c.Request().Context()

	find, err := transactionFind(c)
	if err != nil {
		return err
	}
	summary, err := s.Store.SummarizeTransactions(ctx, find)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to summarize transactions").SetInternal(err)
	}
	return c.JSON(http.StatusOK, &transactionSummaryResponse{
		Income:  summary.Income,
		Expense: summary.Expense,
		Profit:  summary.Profit(),
	})
}
