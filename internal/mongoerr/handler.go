package mongoerr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/deppfellow/shelter/internal/errs"
)

// Classify wraps a driver error into an *Error with the matching Code.
// Errors that are already classified keep their Code; a copy is returned
// with op and collection filled in when missing. A nil err returns nil.
func Classify(op, collection string, err error) *Error {
	if err == nil {
		return nil
	}

	var storeErr *Error
	if errors.As(err, &storeErr) {
		dup := *storeErr
		if dup.Op == "" {
			dup.Op = op
		}
		if dup.Collection == "" {
			dup.Collection = collection
		}
		return &dup
	}

	classified := &Error{
		Op:         op,
		Collection: collection,
		driverErr:  err,
	}

	var selectionErr topology.ServerSelectionError

	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		classified.Code = NotFound
		classified.Message = "no document matched the query"
	case mongo.IsDuplicateKeyError(err):
		classified.Code = DuplicateKey
		classified.Message = "duplicate key"
	case mongo.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		classified.Code = Timeout
		classified.Message = "operation timed out"
	case mongo.IsNetworkError(err),
		errors.Is(err, mongo.ErrClientDisconnected),
		errors.As(err, &selectionErr):
		classified.Code = Transport
		classified.Message = "data store unreachable"
	default:
		classified.Code = Other
		classified.Message = "store operation failed"
	}

	return classified
}

// generateErrorCode builds codes like ANIMAL_NOT_FOUND from the collection
// name and the error kind.
func generateErrorCode(collection string, code Code) string {
	if collection == "" {
		collection = "RECORD"
	}

	domain := strings.ToUpper(collection)
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}

	action := "ERROR"
	switch code {
	case Validation:
		action = "INVALID"
	case NotFound:
		action = "NOT_FOUND"
	case DuplicateKey:
		action = "ALREADY_EXISTS"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

// getEntityName turns "animals" into "Animal".
func getEntityName(collection string) string {
	if collection == "" {
		return "Record"
	}

	entity := collection
	if strings.HasSuffix(entity, "s") && len(entity) > 1 {
		entity = entity[:len(entity)-1]
	}
	return humanizeText(entity)
}

func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// HandleError converts any error into an *errs.HTTPError.
//
// HTTPErrors pass through untouched. Store errors map by Code; anything
// else becomes a generic 500.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var storeErr *Error
	if !errors.As(err, &storeErr) {
		return errs.NewInternalServerError()
	}

	// Without a collection the generic status code is more useful than
	// RECORD_*.
	var errorCode *string
	if storeErr.Collection != "" {
		code := generateErrorCode(storeErr.Collection, storeErr.Code)
		errorCode = &code
	}
	entityName := getEntityName(storeErr.Collection)

	switch storeErr.Code {
	case Validation:
		message := storeErr.Message
		if message == "" {
			message = "Validation failed"
		}
		return errs.NewBadRequestError(message, true, errorCode, storeErr.Fields)
	case NotFound:
		return errs.NewNotFoundError(fmt.Sprintf("%s not found", entityName), true, errorCode)
	case DuplicateKey:
		return errs.NewConflictError(fmt.Sprintf("A %s with this identifier already exists", strings.ToLower(entityName)), true, errorCode)
	case Timeout:
		return errs.NewGatewayTimeoutError()
	case Transport:
		return errs.NewServiceUnavailableError()
	default:
		return errs.NewInternalServerError()
	}
}
