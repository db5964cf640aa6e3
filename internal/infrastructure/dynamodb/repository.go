package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"aid-portal/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsv2dynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsv2types "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	awsv2xray "github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/aws/aws-xray-sdk-go/xray"
)

const (
	entityApplication = "APPLICATION"
	statusIndex       = "GSI1"
)

type dynamoAPI interface {
	PutItem(ctx context.Context, params *awsv2dynamodb.PutItemInput, optFns ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *awsv2dynamodb.GetItemInput, optFns ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *awsv2dynamodb.QueryInput, optFns ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.QueryOutput, error)
}

type Client struct {
	db        dynamoAPI
	tableName string
}

func NewClient(ctx context.Context, region, tableName string) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	awsv2xray.AWSV2Instrumentor(&cfg.APIOptions)
	return &Client{db: awsv2dynamodb.NewFromConfig(cfg), tableName: tableName}, nil
}

func appPK(id string) string               { return "APP#" + id }
func appMetaSK() string                    { return "META" }
func statusPK(status domain.Status) string { return "STATUS#" + string(status) }

func statusSK(app domain.Application) string {
	return app.CreatedAt.UTC().Format(time.RFC3339Nano) + "#" + app.ID
}

type historyItem struct {
	ActorEmail string `dynamodbav:"ActorEmail"`
	ActorName  string `dynamodbav:"ActorName"`
	Action     string `dynamodbav:"Action"`
	Comment    string `dynamodbav:"Comment,omitempty"`
	FromStatus string `dynamodbav:"FromStatus"`
	ToStatus   string `dynamodbav:"ToStatus"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
}

type applicationItem struct {
	PK              string        `dynamodbav:"PK"`
	SK              string        `dynamodbav:"SK"`
	GSI1PK          string        `dynamodbav:"GSI1PK"`
	GSI1SK          string        `dynamodbav:"GSI1SK"`
	EntityType      string        `dynamodbav:"EntityType"`
	ID              string        `dynamodbav:"ID"`
	ApplicantName   string        `dynamodbav:"ApplicantName"`
	Email           string        `dynamodbav:"Email"`
	Phone           string        `dynamodbav:"Phone,omitempty"`
	ProjectTitle    string        `dynamodbav:"ProjectTitle"`
	Description     string        `dynamodbav:"Description"`
	AmountRequested float64       `dynamodbav:"AmountRequested"`
	Beneficiaries   *int          `dynamodbav:"Beneficiaries,omitempty"`
	Status          string        `dynamodbav:"Status"`
	CurrentReviewer string        `dynamodbav:"CurrentReviewer"`
	History         []historyItem `dynamodbav:"History"`
	Version         int           `dynamodbav:"Version"`
	CreatedAt       string        `dynamodbav:"CreatedAt"`
	UpdatedAt       string        `dynamodbav:"UpdatedAt"`
}

func toItem(app domain.Application) applicationItem {
	history := make([]historyItem, 0, len(app.History))
	for _, h := range app.History {
		history = append(history, historyItem{
			ActorEmail: h.ActorEmail,
			ActorName:  h.ActorName,
			Action:     string(h.Action),
			Comment:    h.Comment,
			FromStatus: string(h.FromStatus),
			ToStatus:   string(h.ToStatus),
			CreatedAt:  h.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return applicationItem{
		PK:              appPK(app.ID),
		SK:              appMetaSK(),
		GSI1PK:          statusPK(app.Status),
		GSI1SK:          statusSK(app),
		EntityType:      entityApplication,
		ID:              app.ID,
		ApplicantName:   app.ApplicantName,
		Email:           app.Email,
		Phone:           app.Phone,
		ProjectTitle:    app.ProjectTitle,
		Description:     app.Description,
		AmountRequested: app.AmountRequested,
		Beneficiaries:   app.Beneficiaries,
		Status:          string(app.Status),
		CurrentReviewer: string(app.CurrentReviewer),
		History:         history,
		Version:         app.Version,
		CreatedAt:       app.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:       app.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromItem(raw applicationItem) domain.Application {
	history := make([]domain.HistoryEntry, 0, len(raw.History))
	for _, h := range raw.History {
		at, _ := time.Parse(time.RFC3339Nano, h.CreatedAt)
		history = append(history, domain.HistoryEntry{
			ActorEmail: h.ActorEmail,
			ActorName:  h.ActorName,
			Action:     domain.Action(h.Action),
			Comment:    h.Comment,
			FromStatus: domain.Status(h.FromStatus),
			ToStatus:   domain.Status(h.ToStatus),
			CreatedAt:  at,
		})
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, raw.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, raw.UpdatedAt)
	return domain.Application{
		ID:              raw.ID,
		ApplicantName:   raw.ApplicantName,
		Email:           raw.Email,
		Phone:           raw.Phone,
		ProjectTitle:    raw.ProjectTitle,
		Description:     raw.Description,
		AmountRequested: raw.AmountRequested,
		Beneficiaries:   raw.Beneficiaries,
		Status:          domain.Status(raw.Status),
		CurrentReviewer: domain.Role(raw.CurrentReviewer),
		History:         history,
		Version:         raw.Version,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
}

func conditionalCheckFailure(err error) (*awsv2types.ConditionalCheckFailedException, bool) {
	var condErr *awsv2types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return condErr, true
	}
	return nil, false
}

type ApplicationRepository struct{ client *Client }

func NewApplicationRepository(client *Client) *ApplicationRepository {
	return &ApplicationRepository{client: client}
}

func (r *ApplicationRepository) Create(ctx context.Context, app domain.Application) error {
	av, err := attributevalue.MarshalMap(toItem(app))
	if err != nil {
		return err
	}
	return xray.Capture(ctx, "DynamoDB.PutApplication", func(ctx context.Context) error {
		_, err := r.client.db.PutItem(ctx, &awsv2dynamodb.PutItemInput{
			TableName:           aws.String(r.client.tableName),
			Item:                av,
			ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
		})
		if _, ok := conditionalCheckFailure(err); ok {
			return fmt.Errorf("application %s exists: %w", app.ID, domain.ErrConflict)
		}
		return err
	})
}

// Update replaces the stored application only while its version still equals
// expectedVersion.
func (r *ApplicationRepository) Update(ctx context.Context, app domain.Application, expectedVersion int) error {
	av, err := attributevalue.MarshalMap(toItem(app))
	if err != nil {
		return err
	}
	return xray.Capture(ctx, "DynamoDB.UpdateApplication", func(ctx context.Context) error {
		_, err := r.client.db.PutItem(ctx, &awsv2dynamodb.PutItemInput{
			TableName:           aws.String(r.client.tableName),
			Item:                av,
			ConditionExpression: aws.String("attribute_exists(PK) AND #v = :v"),
			ExpressionAttributeNames: map[string]string{
				"#v": "Version",
			},
			ExpressionAttributeValues: map[string]awsv2types.AttributeValue{
				":v": &awsv2types.AttributeValueMemberN{Value: strconv.Itoa(expectedVersion)},
			},
			ReturnValuesOnConditionCheckFailure: awsv2types.ReturnValuesOnConditionCheckFailureAllOld,
		})
		if condErr, ok := conditionalCheckFailure(err); ok {
			if len(condErr.Item) == 0 {
				return domain.ErrNotFound
			}
			return domain.ErrConflict
		}
		return err
	})
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (domain.Application, error) {
	var out *awsv2dynamodb.GetItemOutput
	err := xray.Capture(ctx, "DynamoDB.GetApplication", func(ctx context.Context) error {
		var e error
		out, e = r.client.db.GetItem(ctx, &awsv2dynamodb.GetItemInput{
			TableName: aws.String(r.client.tableName),
			Key: map[string]awsv2types.AttributeValue{
				"PK": &awsv2types.AttributeValueMemberS{Value: appPK(id)},
				"SK": &awsv2types.AttributeValueMemberS{Value: appMetaSK()},
			},
			ConsistentRead: aws.Bool(true),
		})
		return e
	})
	if err != nil {
		return domain.Application{}, err
	}
	if out.Item == nil {
		return domain.Application{}, domain.ErrNotFound
	}
	var raw applicationItem
	if err := attributevalue.UnmarshalMap(out.Item, &raw); err != nil {
		return domain.Application{}, err
	}
	return fromItem(raw), nil
}

func (r *ApplicationRepository) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Application, error) {
	apps := make([]domain.Application, 0)
	err := xray.Capture(ctx, "DynamoDB.QueryApplicationsByStatus", func(ctx context.Context) error {
		pages := awsv2dynamodb.NewQueryPaginator(r.client.db, &awsv2dynamodb.QueryInput{
			TableName:              aws.String(r.client.tableName),
			IndexName:              aws.String(statusIndex),
			KeyConditionExpression: aws.String("GSI1PK = :pk"),
			ExpressionAttributeValues: map[string]awsv2types.AttributeValue{
				":pk": &awsv2types.AttributeValueMemberS{Value: statusPK(status)},
			},
		})
		for pages.HasMorePages() {
			page, err := pages.NextPage(ctx)
			if err != nil {
				return err
			}
			for _, item := range page.Items {
				var raw applicationItem
				if err := attributevalue.UnmarshalMap(item, &raw); err != nil {
					return err
				}
				app := fromItem(raw)
				// The index is eventually consistent; drop rows that moved on.
				if app.Status == status {
					apps = append(apps, app)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return apps, nil
}
