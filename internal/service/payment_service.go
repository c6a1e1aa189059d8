// internal/service/payment_service.go
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"workid-wallet/internal/domain"
	"workid-wallet/internal/metrics"
	"workid-wallet/internal/repository"
	"workid-wallet/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WebhookSigner signs and verifies gateway callbacks for a payment.
type WebhookSigner interface {
	Sign(paymentID uuid.UUID, providerReference string) string
	Verify(paymentID uuid.UUID, providerReference, signature string) bool
}

// PaymentService adapts external gateway payments onto the ledger. A payment
// credits its payer at most once, however often the gateway redelivers.
type PaymentService interface {
	CreatePayment(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, provider string) (*domain.Payment, error)
	ConfirmPayment(ctx context.Context, paymentID uuid.UUID, providerReference, signature string) (*domain.Payment, error)
	FailPayment(ctx context.Context, paymentID uuid.UUID, providerReference, signature string) (*domain.Payment, error)
	Get(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error)
	// SimulateSuccess plays the gateway: it signs a generated reference and
	// runs the normal confirmation. Only available when the mock gateway is enabled.
	SimulateSuccess(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error)
}

// PaymentOptions configures a PaymentService.
type PaymentOptions struct {
	DefaultProvider    string
	MockGatewayEnabled bool
}

type paymentService struct {
	uow         *UnitOfWork
	paymentRepo repository.PaymentRepository
	mutator     *balanceMutator
	signer      WebhookSigner
	opts        PaymentOptions
	logger      *slog.Logger
}

// NewPaymentService creates a new instance of PaymentService.
func NewPaymentService(
	uow *UnitOfWork,
	paymentRepo repository.PaymentRepository,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	signer WebhookSigner,
	opts PaymentOptions,
	logger *slog.Logger,
) PaymentService {
	return &paymentService{
		uow:         uow,
		paymentRepo: paymentRepo,
		mutator:     &balanceMutator{walletRepo: walletRepo, transactionRepo: transactionRepo},
		signer:      signer,
		opts:        opts,
		logger:      logger,
	}
}

// CreatePayment opens a pending payment. It has no balance effect.
func (s *paymentService) CreatePayment(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, provider string) (*domain.Payment, error) {
	if !domain.IsValidAmount(amount) {
		observeFailure(s.logger, "create_payment", util.ErrInvalidAmount, "user_id", userID)
		return nil, util.ErrInvalidAmount
	}
	provider = strings.TrimSpace(provider)
	if provider == "" {
		provider = s.opts.DefaultProvider
	}

	payment := domain.NewPayment(userID, amount, provider)
	err := s.uow.InTx(ctx, "create payment", func(ctx context.Context, q repository.DBExecutor) error {
		return s.paymentRepo.CreatePayment(ctx, q, payment)
	})
	if err != nil {
		observeFailure(s.logger, "create_payment", err, "user_id", userID)
		return nil, err
	}

	s.logger.Info("Payment created", "payment_id", payment.ID, "user_id", userID, "provider", provider)
	return payment, nil
}

// ConfirmPayment applies a signed success callback. The signature is checked
// before the payment is looked up. A payment already in success is returned
// unchanged; a failed one cannot be confirmed.
func (s *paymentService) ConfirmPayment(ctx context.Context, paymentID uuid.UUID, providerReference, signature string) (*domain.Payment, error) {
	if !s.signer.Verify(paymentID, providerReference, signature) {
		metrics.RecordPaymentConfirmation("invalid_signature")
		observeFailure(s.logger, "confirm_payment", util.ErrInvalidSignature, "payment_id", paymentID)
		return nil, util.ErrInvalidSignature
	}

	var (
		payment     *domain.Payment
		transaction *domain.Transaction
	)
	err := s.uow.InTx(ctx, "confirm payment", func(ctx context.Context, q repository.DBExecutor) error {
		var err error
		payment, err = s.paymentRepo.GetPaymentForUpdate(ctx, q, paymentID)
		if err != nil {
			return err
		}

		switch payment.Status {
		case domain.PaymentStatusSuccess:
			return nil
		case domain.PaymentStatusFailed:
			return util.ErrAlreadyProcessed
		}

		payment.Status = domain.PaymentStatusSuccess
		payment.ProviderReference = &providerReference
		payment.Signature = &signature
		payment.UpdatedAt = time.Now().UTC()
		if err := s.paymentRepo.SettlePayment(ctx, q, payment); err != nil {
			return err
		}

		_, transaction, err = s.mutator.credit(ctx, q, payment.UserID, payment.Amount, domain.LedgerEntry{
			Type: domain.TransactionTypeTopUp,
		})
		return err
	})
	if err != nil {
		observeFailure(s.logger, "confirm_payment", err, "payment_id", paymentID)
		return nil, err
	}

	if transaction == nil {
		metrics.RecordPaymentConfirmation("duplicate")
		s.logger.Info("Payment already confirmed", "payment_id", paymentID)
		return payment, nil
	}

	observeEntries(transaction)
	metrics.RecordPaymentConfirmation("settled")
	s.logger.Info("Payment confirmed", "payment_id", paymentID, "user_id", payment.UserID, "transaction_id", transaction.ID)
	return payment, nil
}

// FailPayment applies a signed failure callback: pending becomes failed with
// no balance effect. A failed payment is returned unchanged; a successful one
// cannot be failed.
func (s *paymentService) FailPayment(ctx context.Context, paymentID uuid.UUID, providerReference, signature string) (*domain.Payment, error) {
	if !s.signer.Verify(paymentID, providerReference, signature) {
		metrics.RecordPaymentConfirmation("invalid_signature")
		observeFailure(s.logger, "fail_payment", util.ErrInvalidSignature, "payment_id", paymentID)
		return nil, util.ErrInvalidSignature
	}

	var payment *domain.Payment
	err := s.uow.InTx(ctx, "fail payment", func(ctx context.Context, q repository.DBExecutor) error {
		var err error
		payment, err = s.paymentRepo.GetPaymentForUpdate(ctx, q, paymentID)
		if err != nil {
			return err
		}

		switch payment.Status {
		case domain.PaymentStatusFailed:
			return nil
		case domain.PaymentStatusSuccess:
			return util.ErrAlreadyProcessed
		}

		payment.Status = domain.PaymentStatusFailed
		payment.ProviderReference = &providerReference
		payment.Signature = &signature
		payment.UpdatedAt = time.Now().UTC()
		return s.paymentRepo.SettlePayment(ctx, q, payment)
	})
	if err != nil {
		observeFailure(s.logger, "fail_payment", err, "payment_id", paymentID)
		return nil, err
	}

	metrics.RecordPaymentConfirmation("failed")
	s.logger.Info("Payment marked failed", "payment_id", paymentID)
	return payment, nil
}

func (s *paymentService) Get(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	var payment *domain.Payment
	err := s.uow.Read(ctx, "get payment", func(ctx context.Context, q repository.DBExecutor) error {
		var err error
		payment, err = s.paymentRepo.GetPaymentByID(ctx, q, paymentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) SimulateSuccess(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	if !s.opts.MockGatewayEnabled {
		return nil, util.ErrNotFound
	}
	reference := "SIM-" + strings.ToUpper(uuid.NewString()[:8])
	return s.ConfirmPayment(ctx, paymentID, reference, s.signer.Sign(paymentID, reference))
}
