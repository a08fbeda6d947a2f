package eth

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ConvertArgs converts the JSON arguments prepared by the marketplace backend into the Go values
// expected by method's inputs.
func ConvertArgs(method abi.Method, raw []json.RawMessage) ([]interface{}, error) {
	if len(raw) != len(method.Inputs) {
		return nil, fmt.Errorf("method %s expects %d args, got %d", method.Name, len(method.Inputs), len(raw))
	}

	args := make([]interface{}, len(raw))
	for i, input := range method.Inputs {
		v, err := convertArg(input.Type, raw[i])
		if err != nil {
			return nil, fmt.Errorf("arg %d (%s) of %s: %w", i, input.Name, method.Name, err)
		}
		args[i] = v.Interface()
	}

	return args, nil
}

func convertArg(typ abi.Type, raw json.RawMessage) (reflect.Value, error) {
	switch typ.T {
	case abi.AddressTy:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return reflect.Value{}, err
		}
		if !common.IsHexAddress(s) {
			return reflect.Value{}, fmt.Errorf("invalid address %s", s)
		}
		return reflect.ValueOf(common.HexToAddress(s)), nil

	case abi.IntTy, abi.UintTy:
		n, err := parseBigInt(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		if typ.T == abi.UintTy && n.Sign() < 0 {
			return reflect.Value{}, fmt.Errorf("negative value %s for %s", n, typ.String())
		}

		if !fitsInt(n, typ) {
			return reflect.Value{}, fmt.Errorf("value %s overflows %s", n, typ.String())
		}

		goType := typ.GetType()
		if goType == reflect.TypeOf(&big.Int{}) {
			return reflect.ValueOf(n), nil
		}
		if typ.T == abi.UintTy {
			return reflect.ValueOf(n.Uint64()).Convert(goType), nil
		}
		return reflect.ValueOf(n.Int64()).Convert(goType), nil

	case abi.BoolTy:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(b), nil

	case abi.StringTy:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(s), nil

	case abi.BytesTy:
		var bz hexutil.Bytes
		if err := json.Unmarshal(raw, &bz); err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf([]byte(bz)), nil

	case abi.FixedBytesTy:
		var bz hexutil.Bytes
		if err := json.Unmarshal(raw, &bz); err != nil {
			return reflect.Value{}, err
		}
		if len(bz) > typ.Size {
			return reflect.Value{}, fmt.Errorf("%d bytes do not fit in %s", len(bz), typ.String())
		}
		v := reflect.New(typ.GetType()).Elem()
		reflect.Copy(v, reflect.ValueOf([]byte(bz)))
		return v, nil

	case abi.SliceTy, abi.ArrayTy:
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return reflect.Value{}, err
		}

		var v reflect.Value
		if typ.T == abi.SliceTy {
			v = reflect.MakeSlice(typ.GetType(), len(elems), len(elems))
		} else {
			if len(elems) != typ.Size {
				return reflect.Value{}, fmt.Errorf("%s expects %d elements, got %d", typ.String(), typ.Size, len(elems))
			}
			v = reflect.New(typ.GetType()).Elem()
		}

		for i, elem := range elems {
			ev, err := convertArg(*typ.Elem, elem)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			v.Index(i).Set(ev)
		}
		return v, nil

	case abi.TupleTy:
		return convertTuple(typ, raw)
	}

	return reflect.Value{}, fmt.Errorf("unsupported abi type %s", typ.String())
}

// convertTuple accepts either a JSON object keyed by component name or a positional JSON array.
func convertTuple(typ abi.Type, raw json.RawMessage) (reflect.Value, error) {
	elems := make([]json.RawMessage, len(typ.TupleElems))

	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var positional []json.RawMessage
		if err := json.Unmarshal(raw, &positional); err != nil {
			return reflect.Value{}, err
		}
		if len(positional) != len(elems) {
			return reflect.Value{}, fmt.Errorf("tuple expects %d components, got %d", len(elems), len(positional))
		}
		copy(elems, positional)
	} else {
		named := make(map[string]json.RawMessage)
		if err := json.Unmarshal(raw, &named); err != nil {
			return reflect.Value{}, err
		}
		for i, name := range typ.TupleRawNames {
			elem, ok := named[name]
			if !ok {
				return reflect.Value{}, fmt.Errorf("missing tuple component %s", name)
			}
			elems[i] = elem
		}
	}

	v := reflect.New(typ.GetType()).Elem()
	for i, elemType := range typ.TupleElems {
		ev, err := convertArg(*elemType, elems[i])
		if err != nil {
			return reflect.Value{}, fmt.Errorf("component %d: %w", i, err)
		}
		v.Field(i).Set(ev)
	}

	return v, nil
}

// parseBigInt accepts a JSON number or a decimal / 0x-prefixed string.
func parseBigInt(raw json.RawMessage) (*big.Int, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer %s", s)
	}

	return n, nil
}

func fitsInt(n *big.Int, typ abi.Type) bool {
	if typ.T == abi.UintTy {
		return n.BitLen() <= typ.Size
	}

	if n.Sign() < 0 {
		// -2^(size-1) is the smallest value.
		return new(big.Int).Add(n, common.Big1).BitLen() < typ.Size
	}

	return n.BitLen() < typ.Size
}
