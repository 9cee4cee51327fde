package mongo

import (
	"context"
	"errors"
	"fmt"

	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// todoDoc は todos コレクションのドキュメント表現。
type todoDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Text      string             `bson:"text"`
	Completed bool               `bson:"completed"`
}

func (d *todoDoc) toDomain() *domain_todo.Todo {
	return &domain_todo.Todo{
		ID:        d.ID.Hex(),
		Text:      d.Text,
		Completed: d.Completed,
	}
}

type TodoRepository struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

func NewTodoRepository(db *mongo.Database, logger *zap.Logger) *TodoRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TodoRepository{
		coll:   db.Collection("todos"),
		logger: logger,
	}
}

// Insert は domain の Todo を受け取り、InsertOne して ObjectID を付けて返す
func (r *TodoRepository) Insert(ctx context.Context, t *domain_todo.Todo) (*domain_todo.Todo, error) {
	res, err := r.coll.InsertOne(ctx, todoDoc{
		Text:      t.Text,
		Completed: t.Completed,
	})
	if err != nil {
		return nil, err
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	t.ID = oid.Hex()
	return t, nil
}

// FindAll は全件を _id 昇順（= 挿入順）で返す。0件はエラーではなく空スライス。
func (r *TodoRepository) FindAll(ctx context.Context) ([]*domain_todo.Todo, error) {
	var todos []*domain_todo.Todo

	err := doWithRetry(ctx, DefaultReadRetry, func() error {
		cur, err := r.coll.Find(ctx, bson.D{},
			options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
		)
		if err != nil {
			return err
		}
		defer cur.Close(ctx)

		out := []*domain_todo.Todo{}
		for cur.Next(ctx) {
			var d todoDoc
			if err := cur.Decode(&d); err != nil {
				return err
			}
			out = append(out, d.toDomain())
		}
		if err := cur.Err(); err != nil {
			return err
		}

		todos = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return todos, nil
}

// FindByID は hex として読めない ID / 一致ドキュメント無しを ErrNotFound にする
func (r *TodoRepository) FindByID(ctx context.Context, id string) (*domain_todo.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// ストアのアドレッシングとして不正な ID は NotFound 扱い
		return nil, domain_todo.ErrNotFound
	}

	var d todoDoc
	err = doWithRetry(ctx, DefaultReadRetry, func() error {
		return r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&d)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain_todo.ErrNotFound
		}
		return nil, err
	}
	return d.toDomain(), nil
}

// Update はドキュメント全体を ReplaceOne で差し替える（単一ドキュメントの atomic 更新）。
// compare-and-swap はしない：同時 Toggle は last-writer-wins。
func (r *TodoRepository) Update(ctx context.Context, t *domain_todo.Todo) (*domain_todo.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(t.ID)
	if err != nil {
		return nil, domain_todo.ErrNotFound
	}

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, todoDoc{
		ID:        oid,
		Text:      t.Text,
		Completed: t.Completed,
	})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, domain_todo.ErrNotFound
	}
	return t, nil
}

// DeleteByID は削除件数 0 を ErrNotFound にする
func (r *TodoRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain_todo.ErrNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain_todo.ErrNotFound
	}
	return nil
}

// Ping は /healthz 用。接続確認だけで、コレクションには触らない。
func (r *TodoRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}
