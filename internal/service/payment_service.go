package service

import (
	"context"
	"crypto/sha512"
	"fmt"
	"time"

	"family-stories-be/internal/config"
	"family-stories-be/internal/dto"
	"family-stories-be/internal/entity"
	"family-stories-be/internal/pkg/logger"
	"family-stories-be/internal/pkg/serverutils"
	"family-stories-be/internal/repository/specification"
	"family-stories-be/internal/repository/unitofwork"
	"family-stories-be/pkg/events"
	pktNats "family-stories-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

type IPaymentService interface {
	GetPlans(ctx context.Context) ([]*dto.PlanResponse, error)
	Checkout(ctx context.Context, userId uuid.UUID, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error
	GetSubscriptionStatus(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionStatusResponse, error)
	CancelSubscription(ctx context.Context, userId uuid.UUID) error
}

type paymentService struct {
	uowFactory     unitofwork.RepositoryFactory
	cfg            config.PaymentConfig
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewPaymentService(
	uowFactory unitofwork.RepositoryFactory,
	cfg config.PaymentConfig,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IPaymentService {
	return &paymentService{
		uowFactory:     uowFactory,
		cfg:            cfg,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *paymentService) GetPlans(ctx context.Context) ([]*dto.PlanResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	plans, err := uow.SubscriptionRepository().FindAllPlans(ctx,
		specification.OrderBy{Field: "price"},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.PlanResponse, 0, len(plans))
	for _, p := range plans {
		features := []string{
			fmt.Sprintf("Up to %d projects", p.MaxProjects),
			fmt.Sprintf("Up to %d storytellers per project", p.MaxStorytellers),
		}
		res = append(res, &dto.PlanResponse{
			Id:            p.Id,
			Name:          p.Name,
			Slug:          p.Slug,
			Description:   p.Description,
			Price:         p.Price,
			BillingPeriod: p.BillingPeriod,
			Features:      features,
		})
	}
	return res, nil
}

func (s *paymentService) Checkout(ctx context.Context, userId uuid.UUID, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	plan, err := uow.SubscriptionRepository().FindOnePlan(ctx, specification.ByID{ID: req.PlanId})
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, serverutils.NewNotFound("plan not found")
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.NewNotFound("user not found")
	}

	subId := uuid.New()
	orderId := subId.String()
	sub := &entity.Subscription{
		Id:              subId,
		UserId:          userId,
		PlanId:          plan.Id,
		Status:          entity.SubscriptionStatusPending,
		MidtransOrderId: &orderId,
		CreatedAt:       time.Now(),
	}
	if err := uow.SubscriptionRepository().Create(ctx, sub); err != nil {
		return nil, err
	}

	// External call runs after the subscription row is committed so a lost
	// webhook can still be reconciled by order id.
	var sClient snap.Client
	env := midtrans.Sandbox
	if s.cfg.MidtransEnv == "production" {
		env = midtrans.Production
	}
	sClient.New(s.cfg.MidtransServerKey, env)

	finalAmount := int64(plan.Price + plan.Price*plan.TaxRate)
	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderId,
			GrossAmt: finalAmount,
		},
		CreditCard: &snap.CreditCardDetails{Secure: true},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: user.FullName,
			Email: user.Email,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    plan.Id.String(),
				Price: int64(plan.Price),
				Qty:   1,
				Name:  plan.Name,
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}

	snapResp, midErr := sClient.CreateTransaction(snapReq)
	if midErr != nil {
		return nil, serverutils.NewInternal("midtrans transaction failed", midErr)
	}

	return &dto.CheckoutResponse{
		OrderId:     orderId,
		SnapToken:   snapResp.Token,
		RedirectURL: snapResp.RedirectURL,
	}, nil
}

func (s *paymentService) HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error {
	// Midtrans signature = SHA512(order_id + status_code + gross_amount + server_key)
	signatureInput := req.OrderId + req.StatusCode + req.GrossAmount + s.cfg.MidtransServerKey
	expectedSignature := fmt.Sprintf("%x", sha512.Sum512([]byte(signatureInput)))
	if req.SignatureKey != expectedSignature {
		s.logger.Warn("PaymentService", "Webhook signature mismatch", map[string]interface{}{"order_id": req.OrderId})
		return serverutils.NewUnauthorized("invalid signature")
	}

	subId, err := uuid.Parse(req.OrderId)
	if err != nil {
		return serverutils.NewBadRequest("invalid order id")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: subId})
	if err != nil {
		return err
	}
	if sub == nil {
		return serverutils.NewNotFound("subscription not found")
	}

	switch req.TransactionStatus {
	case "capture", "settlement":
		if req.FraudStatus != "" && req.FraudStatus != "accept" {
			return nil
		}
		if sub.Status == entity.SubscriptionStatusActive {
			return nil // duplicate webhook
		}

		plan, err := uow.SubscriptionRepository().FindOnePlan(ctx, specification.ByID{ID: sub.PlanId})
		if err != nil {
			return err
		}

		now := time.Now()
		end := now.AddDate(0, 1, 0)
		if plan != nil && plan.BillingPeriod == "yearly" {
			end = now.AddDate(1, 0, 0)
		}
		sub.Status = entity.SubscriptionStatusActive
		sub.StartsAt = &now
		sub.EndsAt = &end
		sub.UpdatedAt = &now
		if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
			return err
		}

		if s.eventPublisher != nil {
			user, _ := uow.UserRepository().FindOne(ctx, specification.ByID{ID: sub.UserId})
			fullName := ""
			planSlug := ""
			if user != nil {
				fullName = user.FullName
			}
			if plan != nil {
				planSlug = plan.Slug
			}
			evt := events.NewSubscriptionCreated(sub.UserId, planSlug, fullName)
			if err := s.eventPublisher.Publish(ctx, evt); err != nil {
				s.logger.Warn("PaymentService", "Failed to publish SUBSCRIPTION_CREATED event", map[string]interface{}{"error": err.Error()})
			}
		}

	case "deny", "cancel", "expire", "failure":
		now := time.Now()
		sub.Status = entity.SubscriptionStatusCancelled
		sub.UpdatedAt = &now
		if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
			return err
		}
	}

	return nil
}

func (s *paymentService) GetSubscriptionStatus(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sub, err := uow.SubscriptionRepository().FindOne(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return &dto.SubscriptionStatusResponse{Status: "none"}, nil
	}

	status := sub.Status
	if status == entity.SubscriptionStatusActive && sub.EndsAt != nil && time.Now().After(*sub.EndsAt) {
		status = entity.SubscriptionStatusExpired
	}

	planName := ""
	plan, err := uow.SubscriptionRepository().FindOnePlan(ctx, specification.ByID{ID: sub.PlanId})
	if err == nil && plan != nil {
		planName = plan.Name
	}

	return &dto.SubscriptionStatusResponse{
		PlanName:  planName,
		Status:    string(status),
		StartsAt:  sub.StartsAt,
		ExpiresAt: sub.EndsAt,
	}, nil
}

func (s *paymentService) CancelSubscription(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sub, err := uow.SubscriptionRepository().FindOne(ctx,
		specification.ByUserID{UserID: userId},
		specification.FilterBy{Field: "status", Value: string(entity.SubscriptionStatusActive)},
	)
	if err != nil {
		return err
	}
	if sub == nil {
		return serverutils.NewNotFound("no active subscription")
	}

	now := time.Now()
	sub.Status = entity.SubscriptionStatusCancelled
	sub.UpdatedAt = &now
	return uow.SubscriptionRepository().Update(ctx, sub)
}
